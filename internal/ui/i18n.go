package ui

import (
	"github.com/tartampluch/go-refill/internal/config"
	"github.com/tartampluch/go-refill/internal/locale"
)

// SetupI18n loads the embedded translations and detects available languages.
func (app *GoRefillApp) SetupI18n() {
	app.Catalog = locale.Load()
	if len(app.Catalog.Languages) > 0 {
		app.SupportedLanguages = app.Catalog.Languages
	}
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator based on the user's language preference.
func (app *GoRefillApp) UpdateLocalizer() {
	if app.Catalog == nil {
		return
	}
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	app.Translator = app.Catalog.Translator(lang)
}

// GetMsg is a helper to translate a key safely.
func (app *GoRefillApp) GetMsg(key string) string {
	return app.Translator.Msg(key)
}
