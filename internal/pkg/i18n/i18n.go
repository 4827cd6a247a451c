package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const FallbackMessageID = "error.internal"

type Translator struct {
	bundle *goi18n.Bundle
}

// New loads the embedded es/en catalogs. defaultLang is used when a request
// carries no Accept-Language or an unsupported one.
func New(defaultLang string) (*Translator, error) {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		tag = language.Spanish
	}
	bundle := goi18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, file := range []string{"locales/active.es.json", "locales/active.en.json"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return &Translator{bundle: bundle}, nil
}

// Localize renders messageID in the first matching language of langs
// (Accept-Language values). Unknown ids fall back to the generic message.
func (t *Translator) Localize(messageID string, langs ...string) string {
	loc := goi18n.NewLocalizer(t.bundle, langs...)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{MessageID: messageID})
	if err == nil {
		return msg
	}
	msg, err = loc.Localize(&goi18n.LocalizeConfig{MessageID: FallbackMessageID})
	if err != nil {
		return messageID
	}
	return msg
}
