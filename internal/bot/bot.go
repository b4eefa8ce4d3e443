package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/mtlprog/pricebot/internal/metrics"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotPermitted   = errors.New("insufficient role for command")
	ErrDirectMessages = errors.New("command not available in direct chats")
	ErrInvalidArgs    = errors.New("invalid command arguments")
)

// internalErrorText is shown when a command fails for a reason the user cannot act on.
const internalErrorText = "Something went wrong. Please try again later."

// BotDefinition is the document served to the chat platform.
type BotDefinition struct {
	Description string       `json:"description"`
	Commands    []Definition `json:"commands"`
}

// Bot dispatches requests to its registered commands.
type Bot struct {
	name        string
	description string
	commands    map[string]Command
	order       []string
	userError   func(error) bool
	metrics     *metrics.Metrics
}

// Option configures a Bot.
type Option func(*Bot)

// WithUserErrors sets the predicate for errors whose text is shown to the user as-is.
func WithUserErrors(fn func(error) bool) Option {
	return func(b *Bot) { b.userError = fn }
}

// WithMetrics records command outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bot) { b.metrics = m }
}

// New creates an empty bot.
func New(name, description string, opts ...Option) *Bot {
	b := &Bot{
		name:        name,
		description: description,
		commands:    make(map[string]Command),
		userError:   func(error) bool { return false },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the bot's name.
func (b *Bot) Name() string {
	return b.name
}

// Register adds commands. Registering a name twice panics.
func (b *Bot) Register(cmds ...Command) {
	for _, c := range cmds {
		name := c.Definition().Name
		if _, dup := b.commands[name]; dup {
			panic(fmt.Sprintf("bot %s: command %q registered twice", b.name, name))
		}
		b.commands[name] = c
		b.order = append(b.order, name)
	}
}

// Definition returns the bot's description and command schemas in registration order.
func (b *Bot) Definition() BotDefinition {
	return BotDefinition{
		Description: b.description,
		Commands: lo.Map(b.order, func(name string, _ int) Definition {
			return b.commands[name].Definition()
		}),
	}
}

// Execute validates req against the command's definition and runs it.
// Rejections before the command runs are returned as errors. Once the command
// runs, its failures become ephemeral replies.
func (b *Bot) Execute(ctx context.Context, req Request) (Reply, error) {
	cmd, ok := b.commands[req.Command]
	if !ok {
		return Reply{}, fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command)
	}
	def := cmd.Definition()

	if req.Scope.IsDirect() && !def.DirectMessages {
		return Reply{}, fmt.Errorf("%w: %s", ErrDirectMessages, def.Name)
	}
	role := req.InitiatorRole
	if role == "" {
		role = RoleMember
	}
	if def.DefaultRole != "" && !role.AtLeast(def.DefaultRole) {
		return Reply{}, fmt.Errorf("%w: %s requires %s", ErrNotPermitted, def.Name, def.DefaultRole)
	}
	if err := validateArgs(def, req.Args); err != nil {
		return Reply{}, err
	}

	reply, err := cmd.Execute(ctx, req)
	b.metrics.ObserveCommand(b.name, def.Name, err)
	if err == nil {
		return reply, nil
	}
	if b.userError(err) {
		return Ephemeral(err.Error()), nil
	}
	slog.Error("command failed", "bot", b.name, "command", def.Name, "error", err)
	return Ephemeral(internalErrorText), nil
}

func validateArgs(def Definition, args map[string]string) error {
	for _, p := range def.Params {
		v, ok := args[p.Name]
		if !ok {
			if p.Required {
				return fmt.Errorf("%w: missing %s", ErrInvalidArgs, p.Name)
			}
			continue
		}
		n := utf8.RuneCountInString(v)
		if n < p.MinLength || (p.MaxLength > 0 && n > p.MaxLength) {
			return fmt.Errorf("%w: %s must be %d to %d characters", ErrInvalidArgs, p.Name, p.MinLength, p.MaxLength)
		}
		if len(p.Choices) > 0 && !lo.ContainsBy(p.Choices, func(c Choice) bool { return c.Value == v }) {
			return fmt.Errorf("%w: %s is not one of the allowed values", ErrInvalidArgs, p.Name)
		}
	}
	return nil
}
