package models

import (
	"errors"
	"strings"
	"time"
)

type Mode string

const (
	// ModeUnset is only used when an explicit mode choice is required before relaying text.
	ModeUnset       Mode = ""
	ModeGeneral     Mode = "GENERAL"
	ModeSeekingWork Mode = "SEEKING_WORK"
	ModeHiring      Mode = "HIRING"
	ModeQuick       Mode = "QUICK"
)

var Modes = []Mode{ModeGeneral, ModeSeekingWork, ModeHiring, ModeQuick}

func ToMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ModeGeneral):
		return ModeGeneral, nil
	case string(ModeSeekingWork):
		return ModeSeekingWork, nil
	case string(ModeHiring):
		return ModeHiring, nil
	case string(ModeQuick):
		return ModeQuick, nil
	default:
		return ModeUnset, errors.New("invalid mode")
	}
}

type Locale string

const (
	LocaleNL Locale = "NL"
	LocaleEN Locale = "EN"
	LocaleDE Locale = "DE"
)

const DefaultLocale = LocaleNL

var Locales = []Locale{LocaleNL, LocaleEN, LocaleDE}

func ToLocale(s string) (Locale, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LocaleNL):
		return LocaleNL, nil
	case string(LocaleEN):
		return LocaleEN, nil
	case string(LocaleDE):
		return LocaleDE, nil
	default:
		return "", errors.New("invalid locale")
	}
}

// ConversationRecord links one Telegram user to the responder conversation.
// An empty ContinuationToken means the next responder call starts fresh.
type ConversationRecord struct {
	UserID            int64 `gorm:"primaryKey;autoIncrement:false"`
	Mode              Mode
	Locale            Locale
	ContinuationToken string
	LastSeenAt        time.Time
}

func NewConversationRecord(userID int64, defaultMode Mode) ConversationRecord {
	return ConversationRecord{
		UserID: userID,
		Mode:   defaultMode,
		Locale: DefaultLocale,
	}
}

func (r ConversationRecord) HasMode() bool {
	return r.Mode != ModeUnset
}

func (r ConversationRecord) HasContinuation() bool {
	return r.ContinuationToken != ""
}

// Defaults returns the record a reset produces: same user, nothing else kept.
func (r ConversationRecord) Defaults(defaultMode Mode) ConversationRecord {
	return NewConversationRecord(r.UserID, defaultMode)
}
