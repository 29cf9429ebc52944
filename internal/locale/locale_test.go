package locale_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-refill/internal/config"
	"github.com/tartampluch/go-refill/internal/locale"
)

// translationKeys lists every key the code looks up.
var translationKeys = []string{
	config.TKeyWinTitle,
	config.TKeyWinReminders,
	config.TKeyMenuRefresh,
	config.TKeyMenuSettings,
	config.TKeyMenuOpenFile,
	config.TKeyTrayStatus,
	config.TKeyTrayStatusZero,
	config.TKeyNotifStart,
	config.TKeyNotifSuccess,
	config.TKeyNotifError,
	config.TKeyModeWeb,
	config.TKeyModeLocal,
	config.TKeyLblLanguage,
	config.TKeyHelpLanguage,
	config.TKeyLblMinutes,
	config.TKeyLblRefresh,
	config.TKeyHelpInterval,
	config.TKeyLblPort,
	config.TKeyHelpPort,
	config.TKeyLblGeneral,
	config.TKeyLblEnableAlarm,
	config.TKeyLblDaysBefore,
	config.TKeyLblCalendar,
	config.TKeyBtnSave,
	config.TKeyBtnCancel,
	config.TKeyLblFooter,
	config.TKeyBtnBrowse,
	config.TKeyLblURL,
	config.TKeyHelpURL,
	config.TKeyLblUser,
	config.TKeyLblPass,
	config.TKeyLblSource,
	config.TKeyLblStats,
	config.TKeyLblNoReminders,
	config.TKeyEvtSummary,
	config.TKeyMailSubject,
	config.TKeyMailBody,
	config.TKeyColName,
	config.TKeyColRound,
	config.TKeyColWindow,
	config.TKeyColContact,
	config.TKeyFormatDate,
	config.TKeyErrPortReq,
	config.TKeyErrPortNum,
	config.TKeyErrPortRange,
	config.TKeyErrOpenFile,
}

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in each locale file, and reports orphans.
func TestI18nIntegrity(t *testing.T) {
	defined := make(map[string]bool, len(translationKeys))
	for _, k := range translationKeys {
		defined[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
			require.NoError(t, err, "Must load the locale file")

			var jsonMap map[string]any
			require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

			for key := range defined {
				_, exists := jsonMap[key]
				assert.Truef(t, exists, "Key '%s' defined in config.go is missing in %s", key, lang)
			}

			for jsonKey := range jsonMap {
				if strings.HasPrefix(jsonKey, "_") {
					continue
				}
				if !defined[jsonKey] {
					t.Logf("Warning: Key '%s' exists in JSON but is not checked in the test suite (might be unused)", jsonKey)
				}
			}
		})
	}
}

func TestLoad_DetectsLanguages(t *testing.T) {
	cat := locale.Load()
	assert.ElementsMatch(t, config.SupportedLanguages, cat.Languages)
}

func TestTranslator_Msg(t *testing.T) {
	cat := locale.Load()

	assert.Equal(t, "慢箋領藥提醒", cat.Translator("zh-TW").Msg(config.TKeyMailSubject))
	assert.Equal(t, "Save", cat.Translator("en").Msg(config.TKeyBtnSave))
	assert.Equal(t, "慢箋領藥提醒", cat.Translator("").Msg(config.TKeyMailSubject), "empty selects the default language")
	assert.Equal(t, "no_such_key", cat.Translator("en").Msg("no_such_key"))
}

func TestTranslator_Format(t *testing.T) {
	cat := locale.Load()

	msg, err := cat.Translator("en").Format(config.TKeyEvtSummary, map[string]any{"Name": "Ming", "Round": 2})
	require.NoError(t, err)
	assert.Equal(t, "Refill window: Ming (round 2)", msg)

	msg, err = cat.Translator("zh-TW").Format(config.TKeyMailBody, map[string]any{
		"Name": "王小明", "Start": "2025/01/19", "End": "2025/01/28",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg, "王小明 您好"))
	assert.Contains(t, msg, "2025/01/19 起至 2025/01/28 止")
}

func TestTranslator_Plural(t *testing.T) {
	en := locale.Load().Translator("en")

	one, err := en.Plural(config.TKeyTrayStatus, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "1 refill reminder today", one)

	many, err := en.Plural(config.TKeyTrayStatus, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "3 refill reminders today", many)

	zh, err := locale.Load().Translator("zh-TW").Plural(config.TKeyTrayStatus, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "今日 3 位病患可領藥", zh)
}

func TestTranslator_NilIsSafe(t *testing.T) {
	var tr *locale.Translator
	assert.Equal(t, config.TKeyBtnSave, tr.Msg(config.TKeyBtnSave))

	_, err := tr.Format(config.TKeyEvtSummary, nil)
	assert.EqualError(t, err, config.ErrLocNotInit)
}
