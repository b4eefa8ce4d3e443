package command

import (
	"context"

	"github.com/mtlprog/pricebot/internal/bot"
	"github.com/mtlprog/pricebot/internal/domain"
)

// FAQStore is the slice of faq.Service the FAQ commands use.
type FAQStore interface {
	Get(ctx context.Context, scope domain.Scope) (string, error)
	Set(ctx context.Context, scope domain.Scope, text string) error
	Append(ctx context.Context, scope domain.Scope, text string) error
	Delete(ctx context.Context, scope domain.Scope) error
}

const (
	faqMessageParam = "FAQ_Message"
	faqAddParam     = "Add"
	faqMaxLength    = 65_535
)

// ShowFAQ posts the scope's FAQ to the chat.
type ShowFAQ struct {
	faqs FAQStore
}

func NewShowFAQ(faqs FAQStore) *ShowFAQ {
	return &ShowFAQ{faqs: faqs}
}

func (c *ShowFAQ) Definition() bot.Definition {
	return bot.Definition{
		Name:           "FAQs",
		Description:    "Frequently Asked Questions",
		DirectMessages: true,
	}
}

func (c *ShowFAQ) Execute(ctx context.Context, req bot.Request) (bot.Reply, error) {
	text, err := c.faqs.Get(ctx, req.Scope)
	if err != nil {
		return bot.Reply{}, err
	}
	return bot.Public(text), nil
}

// SetFAQ replaces the scope's FAQ.
type SetFAQ struct {
	faqs FAQStore
}

func NewSetFAQ(faqs FAQStore) *SetFAQ {
	return &SetFAQ{faqs: faqs}
}

func (c *SetFAQ) Definition() bot.Definition {
	return bot.Definition{
		Name:        "set_new_faq",
		Description: "Use this command to set a new FAQ",
		Placeholder: "Setting new FAQs...",
		Params: []bot.Param{{
			Name:        faqMessageParam,
			Description: "FAQ question and answer",
			Required:    true,
			MaxLength:   faqMaxLength,
			MultiLine:   true,
		}},
		DefaultRole: bot.RoleModerator,
	}
}

func (c *SetFAQ) Execute(ctx context.Context, req bot.Request) (bot.Reply, error) {
	if err := c.faqs.Set(ctx, req.Scope, req.Arg(faqMessageParam)); err != nil {
		return bot.Reply{}, err
	}
	return bot.Ephemeral("New FAQ set. Use /FAQs command to check it."), nil
}

// UpdateFAQ appends to the scope's FAQ.
type UpdateFAQ struct {
	faqs FAQStore
}

func NewUpdateFAQ(faqs FAQStore) *UpdateFAQ {
	return &UpdateFAQ{faqs: faqs}
}

func (c *UpdateFAQ) Definition() bot.Definition {
	return bot.Definition{
		Name:        "update_faq",
		Description: "Use this command to add question and answer to an existing FAQ",
		Placeholder: "Updating FAQs...",
		Params: []bot.Param{{
			Name:        faqAddParam,
			Description: "FAQ question and answer",
			Required:    true,
			MaxLength:   faqMaxLength,
			MultiLine:   true,
		}},
		DefaultRole: bot.RoleModerator,
	}
}

func (c *UpdateFAQ) Execute(ctx context.Context, req bot.Request) (bot.Reply, error) {
	if err := c.faqs.Append(ctx, req.Scope, req.Arg(faqAddParam)); err != nil {
		return bot.Reply{}, err
	}
	return bot.Ephemeral("Updated FAQs. Use /FAQs command to check it."), nil
}

// DeleteFAQ removes the scope's FAQ.
type DeleteFAQ struct {
	faqs FAQStore
}

func NewDeleteFAQ(faqs FAQStore) *DeleteFAQ {
	return &DeleteFAQ{faqs: faqs}
}

func (c *DeleteFAQ) Definition() bot.Definition {
	return bot.Definition{
		Name:           "delete_faq",
		Description:    "Delete FAQs",
		Placeholder:    "Deleting FAQs...",
		DirectMessages: true,
	}
}

func (c *DeleteFAQ) Execute(ctx context.Context, req bot.Request) (bot.Reply, error) {
	if err := c.faqs.Delete(ctx, req.Scope); err != nil {
		return bot.Reply{}, err
	}
	return bot.Ephemeral("Deleted FAQs. Use /FAQs command to check it."), nil
}
