package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/metrics"
)

var errUser = errors.New("Price config not found.")

type stubCommand struct {
	def   Definition
	reply Reply
	err   error
	calls int
	last  Request
}

func (s *stubCommand) Definition() Definition { return s.def }

func (s *stubCommand) Execute(_ context.Context, req Request) (Reply, error) {
	s.calls++
	s.last = req
	return s.reply, s.err
}

var groupScope = domain.ChatScope(domain.Chat{Type: domain.ChatGroup, ID: "g"})

func newTestBot(cmds ...Command) *Bot {
	b := New("price", "test bot", WithUserErrors(func(err error) bool { return errors.Is(err, errUser) }))
	b.Register(cmds...)
	return b
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"", RoleMember, false},
		{"member", RoleMember, false},
		{"owner", RoleOwner, false},
		{"superuser", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoleOrder(t *testing.T) {
	order := []Role{RoleMember, RoleModerator, RoleAdmin, RoleOwner}
	for i, r := range order {
		for j, other := range order {
			if got, want := r.AtLeast(other), i >= j; got != want {
				t.Errorf("%s.AtLeast(%s) = %v, want %v", r, other, got, want)
			}
		}
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	b := newTestBot()
	_, err := b.Execute(context.Background(), Request{Command: "nope", Scope: groupScope})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("error = %v, want ErrUnknownCommand", err)
	}
}

func TestExecuteRoleCheck(t *testing.T) {
	cmd := &stubCommand{def: Definition{Name: "configure", DefaultRole: RoleAdmin}, reply: Ephemeral("ok")}
	b := newTestBot(cmd)
	ctx := context.Background()

	for _, role := range []Role{"", RoleMember, RoleModerator} {
		if _, err := b.Execute(ctx, Request{Command: "configure", Scope: groupScope, InitiatorRole: role}); !errors.Is(err, ErrNotPermitted) {
			t.Errorf("role %q: error = %v, want ErrNotPermitted", role, err)
		}
	}
	for _, role := range []Role{RoleAdmin, RoleOwner} {
		if _, err := b.Execute(ctx, Request{Command: "configure", Scope: groupScope, InitiatorRole: role}); err != nil {
			t.Errorf("role %q: %v", role, err)
		}
	}
	if cmd.calls != 2 {
		t.Errorf("calls = %d, want 2", cmd.calls)
	}
}

func TestExecuteDirectMessages(t *testing.T) {
	direct := domain.ChatScope(domain.Chat{Type: domain.ChatDirect, ID: "d"})
	groupOnly := &stubCommand{def: Definition{Name: "help"}}
	anywhere := &stubCommand{def: Definition{Name: "price", DirectMessages: true}, reply: Ephemeral("ok")}
	b := newTestBot(groupOnly, anywhere)

	if _, err := b.Execute(context.Background(), Request{Command: "help", Scope: direct}); !errors.Is(err, ErrDirectMessages) {
		t.Errorf("error = %v, want ErrDirectMessages", err)
	}
	if _, err := b.Execute(context.Background(), Request{Command: "price", Scope: direct}); err != nil {
		t.Errorf("price in direct chat: %v", err)
	}
}

func TestExecuteValidatesArgs(t *testing.T) {
	cmd := &stubCommand{def: Definition{
		Name: "configure",
		Params: []Param{
			{Name: "Symbol", Required: true, MinLength: 2, MaxLength: 10},
			{Name: "Class", Required: true, Choices: []Choice{{Name: "Crypto", Value: "Cryptocurrency"}}},
			{Name: "Note"},
		},
	}}
	b := newTestBot(cmd)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]string
		ok   bool
	}{
		{"valid", map[string]string{"Symbol": "BTC", "Class": "Cryptocurrency"}, true},
		{"optional set", map[string]string{"Symbol": "BTC", "Class": "Cryptocurrency", "Note": "x"}, true},
		{"missing", map[string]string{"Symbol": "BTC"}, false},
		{"too short", map[string]string{"Symbol": "B", "Class": "Cryptocurrency"}, false},
		{"too long", map[string]string{"Symbol": strings.Repeat("B", 11), "Class": "Cryptocurrency"}, false},
		{"bad choice", map[string]string{"Symbol": "BTC", "Class": "Stock"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Execute(ctx, Request{Command: "configure", Scope: groupScope, Args: tt.args})
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidArgs) {
				t.Errorf("error = %v, want ErrInvalidArgs", err)
			}
		})
	}
}

func TestExecuteCommandErrorsBecomeEphemeral(t *testing.T) {
	userFail := &stubCommand{def: Definition{Name: "price"}, err: errUser}
	internalFail := &stubCommand{def: Definition{Name: "price_message"}, err: errors.New("leveldb: closed")}
	b := newTestBot(userFail, internalFail)
	ctx := context.Background()

	reply, err := b.Execute(ctx, Request{Command: "price", Scope: groupScope})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if reply != Ephemeral(errUser.Error()) {
		t.Errorf("reply = %+v", reply)
	}

	reply, err = b.Execute(ctx, Request{Command: "price_message", Scope: groupScope})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !reply.Ephemeral || strings.Contains(reply.Text, "leveldb") {
		t.Errorf("internal error leaked: %+v", reply)
	}
}

func TestExecutePassesRequest(t *testing.T) {
	cmd := &stubCommand{def: Definition{Name: "price_of", Params: []Param{{Name: "Select", Required: true}}}, reply: Public("hi")}
	b := newTestBot(cmd)

	reply, err := b.Execute(context.Background(), Request{Command: "price_of", Scope: groupScope, Args: map[string]string{"Select": "CHAT"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if reply != Public("hi") {
		t.Errorf("reply = %+v", reply)
	}
	if cmd.last.Arg("Select") != "CHAT" || cmd.last.Arg("missing") != "" {
		t.Errorf("request = %+v", cmd.last)
	}
}

func TestDefinitionOrder(t *testing.T) {
	b := newTestBot(&stubCommand{def: Definition{Name: "b"}}, &stubCommand{def: Definition{Name: "a"}})
	def := b.Definition()
	if def.Description != "test bot" || len(def.Commands) != 2 || def.Commands[0].Name != "b" {
		t.Errorf("definition = %+v", def)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	newTestBot(&stubCommand{def: Definition{Name: "a"}}, &stubCommand{def: Definition{Name: "a"}})
}

func TestExecuteRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := New("faq", "", WithMetrics(metrics.New(reg)))
	b.Register(&stubCommand{def: Definition{Name: "FAQs"}, reply: Public("x")})

	for range 3 {
		if _, err := b.Execute(context.Background(), Request{Command: "FAQs", Scope: groupScope}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}

	want := `
# HELP pricebot_commands_total Executed bot commands by bot, command and outcome.
# TYPE pricebot_commands_total counter
pricebot_commands_total{bot="faq",command="FAQs",outcome="ok"} 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "pricebot_commands_total"); err != nil {
		t.Error(err)
	}
}
