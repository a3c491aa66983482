package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Canonicalize_PlainText(t *testing.T) {
	text, err := Canonicalize(PlainText("  Hallo!  "))
	assert.NoError(t, err)
	assert.Equal(t, "Hallo!", text)
}

func Test_Canonicalize_BlocksAreJoined(t *testing.T) {
	text, err := Canonicalize(StructuredBlocks{
		{Kind: BlockText, Text: "first"},
		{Kind: BlockText, Text: "  "},
		{Kind: "image", Text: "ignored"},
		{Kind: BlockRefusal, Text: "second"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", text)
}

func Test_Canonicalize_NoTextIsResponderFailure(t *testing.T) {
	replies := []Reply{nil, PlainText(""), StructuredBlocks{}, StructuredBlocks{{Kind: "image", Text: "x"}}}

	for _, reply := range replies {
		_, err := Canonicalize(reply)
		assert.ErrorIs(t, err, ErrResponderFailure)
	}
}

func Test_ResponderIncomplete_IsResponderFailure(t *testing.T) {
	assert.ErrorIs(t, ErrResponderIncomplete, ErrResponderFailure)
}

func Test_ToMode(t *testing.T) {
	mode, err := ToMode("hiring")
	assert.NoError(t, err)
	assert.Equal(t, ModeHiring, mode)

	_, err = ToMode("party")
	assert.Error(t, err)
}

func Test_ToLocale(t *testing.T) {
	locale, err := ToLocale(" en ")
	assert.NoError(t, err)
	assert.Equal(t, LocaleEN, locale)

	_, err = ToLocale("FR")
	assert.Error(t, err)
}

func Test_NewConversationRecord_Defaults(t *testing.T) {
	record := NewConversationRecord(7, ModeGeneral)

	assert.Equal(t, int64(7), record.UserID)
	assert.Equal(t, ModeGeneral, record.Mode)
	assert.Equal(t, LocaleNL, record.Locale)
	assert.False(t, record.HasContinuation())
}
