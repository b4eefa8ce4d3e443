package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mtlprog/pricebot/internal/bot"
)

type echoCommand struct{}

func (echoCommand) Definition() bot.Definition {
	return bot.Definition{
		Name:   "echo",
		Params: []bot.Param{{Name: "Text", Required: true}},
	}
}

func (echoCommand) Execute(_ context.Context, req bot.Request) (bot.Reply, error) {
	return bot.Public(req.Arg("Text")), nil
}

type adminCommand struct{}

func (adminCommand) Definition() bot.Definition {
	return bot.Definition{Name: "admin_only", DefaultRole: bot.RoleAdmin}
}

func (adminCommand) Execute(context.Context, bot.Request) (bot.Reply, error) {
	return bot.Ephemeral("done"), nil
}

type failingCommand struct{}

func (failingCommand) Definition() bot.Definition { return bot.Definition{Name: "fail"} }

func (failingCommand) Execute(context.Context, bot.Request) (bot.Reply, error) {
	return bot.Reply{}, errors.New("boom")
}

func newTestRouter(cfg Config) http.Handler {
	b := bot.New("test", "a test bot")
	b.Register(echoCommand{}, adminCommand{}, failingCommand{})
	return NewRouter(cfg, []*bot.Bot{b}, nil)
}

const groupScopeJSON = `{"chat":{"type":"group","id":"g1"}}`

func postCommand(t *testing.T, router http.Handler, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test/execute_command", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetDefinition(t *testing.T) {
	router := newTestRouter(Config{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/bot_definition", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var def bot.BotDefinition
	if err := json.Unmarshal(w.Body.Bytes(), &def); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if def.Description != "a test bot" || len(def.Commands) != 3 || def.Commands[0].Name != "echo" {
		t.Errorf("definition = %+v", def)
	}
}

func TestGetDefinitionUnknownBot(t *testing.T) {
	router := newTestRouter(Config{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope/bot_definition", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestExecuteCommand(t *testing.T) {
	router := newTestRouter(Config{})
	w := postCommand(t, router, `{"command":"echo","args":{"Text":"hi"},"scope":`+groupScopeJSON+`}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var reply bot.Reply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply != bot.Public("hi") {
		t.Errorf("reply = %+v", reply)
	}
}

func TestExecuteCommandStatuses(t *testing.T) {
	router := newTestRouter(Config{})
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"bad role", `{"command":"echo","args":{"Text":"x"},"scope":` + groupScopeJSON + `,"initiatorRole":"king"}`, http.StatusBadRequest},
		{"unknown command", `{"command":"nope","scope":` + groupScopeJSON + `}`, http.StatusNotFound},
		{"missing arg", `{"command":"echo","scope":` + groupScopeJSON + `}`, http.StatusBadRequest},
		{"role too low", `{"command":"admin_only","scope":` + groupScopeJSON + `,"initiatorRole":"member"}`, http.StatusForbidden},
		{"role ok", `{"command":"admin_only","scope":` + groupScopeJSON + `,"initiatorRole":"owner"}`, http.StatusOK},
		{"direct chat", `{"command":"admin_only","scope":{"chat":{"type":"direct","id":"d"}},"initiatorRole":"owner"}`, http.StatusForbidden},
		{"command error", `{"command":"fail","scope":` + groupScopeJSON + `}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postCommand(t, router, tt.body, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestExecuteCommandRequiresBotKey(t *testing.T) {
	router := newTestRouter(Config{BotAPIKey: "bot-key"})
	body := `{"command":"echo","args":{"Text":"hi"},"scope":` + groupScopeJSON + `}`

	if w := postCommand(t, router, body, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want 401", w.Code)
	}
	if w := postCommand(t, router, body, "bot-key"); w.Code != http.StatusOK {
		t.Errorf("with key: status = %d, want 200", w.Code)
	}

	// The definition stays public.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/bot_definition", nil))
	if w.Code != http.StatusOK {
		t.Errorf("definition: status = %d, want 200", w.Code)
	}
}
