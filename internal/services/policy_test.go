package services

import (
	"testing"

	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func recordWithToken() models.ConversationRecord {
	return models.ConversationRecord{
		UserID:            1,
		Mode:              models.ModeSeekingWork,
		Locale:            models.LocaleNL,
		ContinuationToken: "resp_old",
	}
}

func Test_ParseTransition(t *testing.T) {
	kind, value, ok := ParseTransition("SET_MODE:HIRING")
	assert.True(t, ok)
	assert.Equal(t, TransitionSetMode, kind)
	assert.Equal(t, "HIRING", value)

	kind, _, ok = ParseTransition("RESET")
	assert.True(t, ok)
	assert.Equal(t, TransitionReset, kind)

	_, _, ok = ParseTransition("DANCE:NOW")
	assert.False(t, ok)
}

func Test_SetLocale_AlwaysClearsToken(t *testing.T) {
	policy := NewPolicy(models.ModeGeneral)

	for _, locale := range models.Locales {
		updated, text := policy.ApplyTransition(recordWithToken(), TransitionSetLocale, string(locale))

		assert.Equal(t, locale, updated.Locale)
		assert.Empty(t, updated.ContinuationToken)
		assert.Contains(t, text, localeNames[locale])
	}
}

func Test_SetMode_ClearsToken(t *testing.T) {
	policy := NewPolicy(models.ModeGeneral)

	updated, text := policy.ApplyTransition(recordWithToken(), TransitionSetMode, "HIRING")

	assert.Equal(t, models.ModeHiring, updated.Mode)
	assert.Equal(t, models.LocaleNL, updated.Locale)
	assert.Empty(t, updated.ContinuationToken)
	assert.Contains(t, text, modeLabel(models.ModeHiring, models.LocaleNL))
}

func Test_Reset_YieldsDefaults(t *testing.T) {
	for _, defaultMode := range []models.Mode{models.ModeGeneral, models.ModeUnset} {
		policy := NewPolicy(defaultMode)
		record := recordWithToken()
		record.Locale = models.LocaleDE

		updated, text := policy.ApplyTransition(record, TransitionReset, "")

		assert.Equal(t, models.NewConversationRecord(record.UserID, defaultMode), updated)
		assert.Equal(t, resetText.in(models.LocaleNL), text)
	}
}

func Test_InvalidValue_LeavesRecordUnchanged(t *testing.T) {
	policy := NewPolicy(models.ModeGeneral)
	record := recordWithToken()

	updated, text := policy.ApplyTransition(record, TransitionSetLocale, "FR")
	assert.Equal(t, record, updated)
	assert.Equal(t, unknownOptionText.in(models.LocaleNL), text)

	updated, _ = policy.ApplyTransition(record, TransitionSetMode, "PARTY")
	assert.Equal(t, record, updated)
}

func Test_Confirmation_IsLocalized(t *testing.T) {
	policy := NewPolicy(models.ModeGeneral)
	record := models.ConversationRecord{Mode: models.ModeQuick, Locale: models.LocaleEN}

	assert.Equal(t, "✅ Topic: Quick question. Language: English.", policy.Confirmation(record))
}

func Test_Menu_HasEveryModeAndLocale(t *testing.T) {
	policy := NewPolicy(models.ModeGeneral)
	menu := policy.Menu(models.NewConversationRecord(1, models.ModeGeneral))

	var data []string
	for _, row := range menu {
		for _, button := range row {
			data = append(data, button.Data)
		}
	}

	for _, mode := range models.Modes {
		assert.Contains(t, data, TransitionData(TransitionSetMode, string(mode)))
	}
	for _, locale := range models.Locales {
		assert.Contains(t, data, TransitionData(TransitionSetLocale, string(locale)))
	}
}
