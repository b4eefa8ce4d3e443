package faq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/storage"
)

var (
	// ErrDirectChat is returned for any operation invoked from a direct chat.
	ErrDirectChat = errors.New("FAQ functionality isn't available in direct chats. FAQBot is intended for communities and groups.")
	// ErrNotSet indicates the scope has no FAQ text.
	ErrNotSet = errors.New("No FAQs have been set up yet. Please ask a Moderator to add some FAQs for this community or group.")
	// ErrNothingToDelete is returned by Delete when the scope has no FAQ text.
	ErrNothingToDelete = errors.New("No FAQs to delete.")
	// ErrEmptyMessage rejects an empty append.
	ErrEmptyMessage = errors.New("FAQ message cannot be empty")
)

// Service stores one FAQ text per group or community.
// Channels share their community's text.
type Service struct {
	faqs   *storage.Map[domain.ConfigKey, string]
	policy domain.DirectChatPolicy
}

// NewService creates a FAQ service over the store's FAQ map.
func NewService(store *storage.Store, policy domain.DirectChatPolicy) *Service {
	return &Service{faqs: store.FAQs, policy: policy}
}

func (s *Service) key(scope domain.Scope) (domain.ConfigKey, error) {
	key, err := domain.DeriveConfigKey(scope, s.policy)
	if err != nil {
		if scope.IsDirect() {
			return domain.ConfigKey{}, ErrDirectChat
		}
		return domain.ConfigKey{}, err
	}
	return key, nil
}

// Get returns the FAQ text for scope.
func (s *Service) Get(ctx context.Context, scope domain.Scope) (string, error) {
	key, err := s.key(scope)
	if err != nil {
		return "", err
	}
	text, ok, err := s.faqs.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("reading faq for %s: %w", key, err)
	}
	if !ok {
		return "", ErrNotSet
	}
	return text, nil
}

// Set replaces the FAQ text for scope.
func (s *Service) Set(ctx context.Context, scope domain.Scope, text string) error {
	key, err := s.key(scope)
	if err != nil {
		return err
	}
	if _, _, err := s.faqs.Insert(ctx, key, text); err != nil {
		return fmt.Errorf("saving faq for %s: %w", key, err)
	}
	slog.Info("faq set", "scope", key.String(), "length", len(text))
	return nil
}

// Append adds text to the existing FAQ, separated by a newline unless the
// existing text is empty or text already starts with one.
func (s *Service) Append(ctx context.Context, scope domain.Scope, text string) error {
	if text == "" {
		return ErrEmptyMessage
	}
	key, err := s.key(scope)
	if err != nil {
		return err
	}

	current, _, err := s.faqs.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("reading faq for %s: %w", key, err)
	}
	if current != "" && !strings.HasPrefix(text, "\n") {
		current += "\n"
	}
	if _, _, err := s.faqs.Insert(ctx, key, current+text); err != nil {
		return fmt.Errorf("saving faq for %s: %w", key, err)
	}
	slog.Info("faq updated", "scope", key.String(), "added", len(text))
	return nil
}

// Delete removes the FAQ text for scope.
func (s *Service) Delete(ctx context.Context, scope domain.Scope) error {
	key, err := s.key(scope)
	if err != nil {
		return err
	}
	_, existed, err := s.faqs.Remove(ctx, key)
	if err != nil {
		return fmt.Errorf("deleting faq for %s: %w", key, err)
	}
	if !existed {
		return ErrNothingToDelete
	}
	slog.Info("faq deleted", "scope", key.String())
	return nil
}

// IsUserError reports whether err carries text meant for the chat user.
func IsUserError(err error) bool {
	return errors.Is(err, ErrDirectChat) ||
		errors.Is(err, ErrNotSet) ||
		errors.Is(err, ErrNothingToDelete) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, domain.ErrInvalidScope)
}
