package services

import (
	"fmt"

	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
)

// Linker bridges one user turn to one responder call and keeps the record's
// continuation token in step with the responder.
type Linker struct{}

func NewLinker() *Linker {
	return &Linker{}
}

func (l *Linker) PrepareCall(record models.ConversationRecord, userText string) models.RequestEnvelope {
	return models.RequestEnvelope{
		UserID:        record.UserID,
		Text:          userText,
		Mode:          record.Mode,
		Locale:        record.Locale,
		PreviousToken: record.ContinuationToken,
	}
}

// CompleteCall stores the handle of a successful call and returns the text for the user.
// On any failure the record is returned exactly as it was passed in.
func (l *Linker) CompleteCall(record models.ConversationRecord, result models.ResponderResult,
	callErr error) (models.ConversationRecord, string, error) {

	if callErr != nil {
		return record, "", fmt.Errorf("%w: %w", models.ErrResponderFailure, callErr)
	}

	if result.Token == "" {
		return record, "", fmt.Errorf("%w: responder returned no continuation handle", models.ErrResponderFailure)
	}

	text, err := models.Canonicalize(result.Reply)
	if err != nil {
		return record, "", err
	}

	updated := record
	updated.ContinuationToken = result.Token
	return updated, text, nil
}
