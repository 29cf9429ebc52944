// Package locale loads the embedded translation files and localizes UI
// labels and reminder messages.
package locale

import (
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-refill/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Catalog holds every embedded translation.
type Catalog struct {
	bundle *i18n.Bundle

	// Languages lists the detected language codes in file order.
	Languages []string
}

// Load reads locales/active.<lang>.json files into a new Catalog.
// Files that fail to load are logged and skipped.
func Load() *Catalog {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	cat := &Catalog{bundle: bundle}

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return cat
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		cat.Languages = append(cat.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	return cat
}

// Translator returns a translator for lang. An empty lang selects the default language.
func (c *Catalog) Translator(lang string) *Translator {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Translator{
		Lang:      lang,
		localizer: i18n.NewLocalizer(c.bundle, lang),
	}
}

// Translator localizes messages for one language. A nil *Translator is
// valid and returns keys unchanged.
type Translator struct {
	Lang      string
	localizer *i18n.Localizer
}

// Msg translates a key without template data, falling back to the key itself.
func (t *Translator) Msg(key string) string {
	msg, err := t.Format(key, nil)
	if err != nil {
		return key
	}
	return msg
}

// Format renders the message key with data.
func (t *Translator) Format(key string, data map[string]any) (string, error) {
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
}

// Plural renders the plural form of key matching count. data may be nil;
// Count is always available to the template.
func (t *Translator) Plural(key string, count int, data map[string]any) (string, error) {
	if data == nil {
		data = make(map[string]any, 1)
	}
	data["Count"] = count
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  count,
	})
}

func (t *Translator) localize(lc *i18n.LocalizeConfig) (string, error) {
	if t == nil || t.localizer == nil {
		return "", errors.New(config.ErrLocNotInit)
	}
	msg, err := t.localizer.Localize(lc)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return "", err
	}
	return msg, nil
}
