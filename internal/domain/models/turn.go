package models

import (
	"fmt"
	"strings"
	"time"
)

type InboundKind string

const (
	InboundText     InboundKind = "text"
	InboundCallback InboundKind = "callback"
	InboundCommand  InboundKind = "command"
)

// Inbound is a transport-neutral update: a text message, a button press or a command.
type Inbound struct {
	Kind       InboundKind
	UserID     int64
	ChatID     int64
	Text       string
	Command    string
	Args       string
	Data       string
	CallbackID string
	At         time.Time
}

type MenuButton struct {
	Label string
	Data  string
}

type Menu [][]MenuButton

// Outbound is what the transport should do as the result of one turn.
// An empty Text means nothing has to be sent besides the callback answer.
type Outbound struct {
	ChatID         int64
	Text           string
	Menu           Menu
	CallbackID     string
	DisablePreview bool
}

func (o Outbound) HasMenu() bool {
	return len(o.Menu) > 0
}

// RequestEnvelope carries one user turn to the responder.
type RequestEnvelope struct {
	UserID        int64
	Text          string
	Mode          Mode
	Locale        Locale
	PreviousToken string
}

func (e RequestEnvelope) HasPreviousToken() bool {
	return e.PreviousToken != ""
}

type BlockKind string

const (
	BlockText    BlockKind = "text"
	BlockRefusal BlockKind = "refusal"
)

type Block struct {
	Kind BlockKind
	Text string
}

// Reply is either PlainText or StructuredBlocks.
type Reply interface {
	isReply()
}

type PlainText string

func (PlainText) isReply() {}

type StructuredBlocks []Block

func (StructuredBlocks) isReply() {}

// ResponderResult is a successful responder answer together with the handle
// the next turn has to pass back.
type ResponderResult struct {
	Reply Reply
	Token string
}

// Canonicalize reduces a reply to the literal text sent to the user.
func Canonicalize(reply Reply) (string, error) {
	var text string

	switch r := reply.(type) {
	case PlainText:
		text = strings.TrimSpace(string(r))
	case StructuredBlocks:
		parts := make([]string, 0, len(r))
		for _, block := range r {
			if block.Kind != BlockText && block.Kind != BlockRefusal {
				continue
			}
			if part := strings.TrimSpace(block.Text); part != "" {
				parts = append(parts, part)
			}
		}
		text = strings.Join(parts, "\n\n")
	case nil:
		return "", fmt.Errorf("%w: empty reply", ErrResponderFailure)
	default:
		return "", fmt.Errorf("%w: unsupported reply %T", ErrResponderFailure, reply)
	}

	if text == "" {
		return "", fmt.Errorf("%w: reply contains no text", ErrResponderFailure)
	}
	return text, nil
}
