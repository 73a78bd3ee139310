package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chatbotchef/chatbotchef/internal/i18n"
)

// AutoTranslator localizes UI templates through the completion endpoint.
type AutoTranslator struct {
	Client *Client
}

var _ i18n.AutoTranslator = (*AutoTranslator)(nil)

const translateSystem = "You are a professional localization engine. Translate the user's English UI text into %s. " +
	"Preserve any placeholders wrapped in curly braces (e.g., {name}) and return only the translated text."

// Translate returns text rendered in locale.
func (a *AutoTranslator) Translate(ctx context.Context, locale, text string) (string, error) {
	if a == nil || !a.Client.Configured() {
		return "", ErrNotConfigured
	}
	lang := i18n.NativeName(locale)
	out, err := a.Client.Complete(ctx, []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(translateSystem, lang+" ("+locale+")")},
		{Role: RoleUser, Content: text},
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("llm: empty translation")
	}
	return out, nil
}
