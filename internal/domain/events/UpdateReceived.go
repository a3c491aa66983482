package events

import (
	"time"

	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
)

var UpdateReceivedTopic = "UpdateReceivedEvent"

type UpdateReceived struct {
	UserID  int64
	Kind    models.InboundKind
	Command string
	HasText bool
	At      time.Time
}
