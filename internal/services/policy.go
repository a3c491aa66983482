package services

import (
	"fmt"
	"strings"

	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
)

type TransitionKind string

const (
	TransitionSetMode   TransitionKind = "SET_MODE"
	TransitionSetLocale TransitionKind = "SET_LOCALE"
	TransitionReset     TransitionKind = "RESET"
)

// ParseTransition splits callback data such as "SET_MODE:HIRING" into kind and value.
func ParseTransition(data string) (TransitionKind, string, bool) {
	kind, value, _ := strings.Cut(strings.TrimSpace(data), ":")
	switch TransitionKind(kind) {
	case TransitionSetMode, TransitionSetLocale, TransitionReset:
		return TransitionKind(kind), value, true
	default:
		return "", "", false
	}
}

func TransitionData(kind TransitionKind, value string) string {
	if value == "" {
		return string(kind)
	}
	return string(kind) + ":" + value
}

// Policy applies menu transitions to a record. It has no side effects.
type Policy struct {
	defaultMode models.Mode
}

func NewPolicy(defaultMode models.Mode) Policy {
	return Policy{defaultMode: defaultMode}
}

// ApplyTransition returns the updated record and the confirmation for the user.
// Mode and locale changes always drop the continuation token so that the next
// turn starts a fresh upstream conversation. Invalid values leave the record unchanged.
func (p Policy) ApplyTransition(record models.ConversationRecord, kind TransitionKind, value string) (models.ConversationRecord, string) {
	switch kind {
	case TransitionSetMode:
		mode, err := models.ToMode(value)
		if err != nil {
			return record, unknownOptionText.in(record.Locale)
		}
		record.Mode = mode
		record.ContinuationToken = ""
		return record, p.Confirmation(record)
	case TransitionSetLocale:
		locale, err := models.ToLocale(value)
		if err != nil {
			return record, unknownOptionText.in(record.Locale)
		}
		record.Locale = locale
		record.ContinuationToken = ""
		return record, p.Confirmation(record)
	case TransitionReset:
		reset := record.Defaults(p.defaultMode)
		return reset, resetText.in(reset.Locale)
	default:
		return record, unknownOptionText.in(record.Locale)
	}
}

func (p Policy) Confirmation(record models.ConversationRecord) string {
	return fmt.Sprintf(confirmationText.in(record.Locale), modeLabel(record.Mode, record.Locale), localeNames[record.Locale])
}

// Menu lists the modes and locales, labelled in the record's locale.
func (p Policy) Menu(record models.ConversationRecord) models.Menu {
	var menu models.Menu

	for i := 0; i < len(models.Modes); i += 2 {
		row := []models.MenuButton{}
		for _, mode := range models.Modes[i:min(i+2, len(models.Modes))] {
			label := modeLabel(mode, record.Locale)
			if mode == record.Mode {
				label = "• " + label
			}
			row = append(row, models.MenuButton{Label: label, Data: TransitionData(TransitionSetMode, string(mode))})
		}
		menu = append(menu, row)
	}

	localeRow := make([]models.MenuButton, 0, len(models.Locales))
	for _, locale := range models.Locales {
		localeRow = append(localeRow, models.MenuButton{
			Label: localeFlags[locale] + " " + string(locale),
			Data:  TransitionData(TransitionSetLocale, string(locale)),
		})
	}

	return append(menu, localeRow)
}
