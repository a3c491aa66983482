package services

import (
	"errors"
	"testing"

	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func Test_PrepareCall_CarriesRecordState(t *testing.T) {
	linker := NewLinker()
	record := models.ConversationRecord{UserID: 3, Mode: models.ModeHiring, Locale: models.LocaleEN, ContinuationToken: "resp_1"}

	request := linker.PrepareCall(record, "I need 3 people Friday")

	assert.Equal(t, models.RequestEnvelope{
		UserID:        3,
		Text:          "I need 3 people Friday",
		Mode:          models.ModeHiring,
		Locale:        models.LocaleEN,
		PreviousToken: "resp_1",
	}, request)
}

func Test_PrepareCall_NoTokenMeansNoPrevious(t *testing.T) {
	request := NewLinker().PrepareCall(models.NewConversationRecord(3, models.ModeGeneral), "hi")

	assert.False(t, request.HasPreviousToken())
}

func Test_CompleteCall_StoresNewToken(t *testing.T) {
	record := models.ConversationRecord{UserID: 3, ContinuationToken: "resp_1"}

	updated, text, err := NewLinker().CompleteCall(record,
		models.ResponderResult{Reply: models.PlainText("answer"), Token: "resp_2"}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Equal(t, "resp_2", updated.ContinuationToken)
	assert.Equal(t, "resp_1", record.ContinuationToken)
}

func Test_CompleteCall_FailureLeavesRecordUnchanged(t *testing.T) {
	record := models.ConversationRecord{UserID: 3, Mode: models.ModeQuick, ContinuationToken: "resp_1"}
	failures := []struct {
		result models.ResponderResult
		err    error
	}{
		{result: models.ResponderResult{}, err: errors.New("timeout")},
		{result: models.ResponderResult{}, err: models.ErrResponderIncomplete},
		{result: models.ResponderResult{Reply: models.PlainText("answer")}, err: nil},
		{result: models.ResponderResult{Reply: models.StructuredBlocks{}, Token: "resp_2"}, err: nil},
		{result: models.ResponderResult{Reply: nil, Token: "resp_2"}, err: nil},
	}

	for _, failure := range failures {
		updated, text, err := NewLinker().CompleteCall(record, failure.result, failure.err)

		assert.ErrorIs(t, err, models.ErrResponderFailure)
		assert.Empty(t, text)
		assert.Equal(t, record, updated)
	}
}
