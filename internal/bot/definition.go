package bot

import (
	"context"
	"fmt"

	"github.com/mtlprog/pricebot/internal/domain"
)

// Role is a chat member's role. Roles are ordered: member < moderator < admin < owner.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleOwner     Role = "owner"
)

var roleRank = map[Role]int{
	RoleMember:    0,
	RoleModerator: 1,
	RoleAdmin:     2,
	RoleOwner:     3,
}

// ParseRole accepts one of the four role names. An empty string is a member.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleMember, nil
	}
	r := Role(s)
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// AtLeast reports whether r ranks at or above required.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// Choice is one allowed value of a string parameter.
type Choice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Param describes one command argument.
type Param struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Required    bool     `json:"required"`
	MinLength   int      `json:"minLength"`
	MaxLength   int      `json:"maxLength"`
	MultiLine   bool     `json:"multiLine,omitempty"`
	Choices     []Choice `json:"choices,omitempty"`
}

// Definition is a command's schema as advertised to the chat platform.
type Definition struct {
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Placeholder    string  `json:"placeholder,omitempty"`
	Params         []Param `json:"params"`
	DefaultRole    Role    `json:"defaultRole,omitempty"`
	DirectMessages bool    `json:"directMessages"`
}

// Request is one command invocation.
type Request struct {
	Command       string            `json:"command"`
	Args          map[string]string `json:"args"`
	Scope         domain.Scope      `json:"scope"`
	Initiator     string            `json:"initiator,omitempty"`
	InitiatorRole Role              `json:"initiatorRole,omitempty"`
}

// Arg returns the named argument or "".
func (r Request) Arg(name string) string {
	return r.Args[name]
}

// Reply is the message a command answers with. Ephemeral replies are shown
// only to the initiator.
type Reply struct {
	Text      string `json:"text"`
	Ephemeral bool   `json:"ephemeral"`
}

// Ephemeral returns a reply visible only to the initiator.
func Ephemeral(text string) Reply {
	return Reply{Text: text, Ephemeral: true}
}

// Public returns a reply visible to the whole chat.
func Public(text string) Reply {
	return Reply{Text: text}
}

// Command is a single bot command.
type Command interface {
	Definition() Definition
	Execute(ctx context.Context, req Request) (Reply, error)
}
