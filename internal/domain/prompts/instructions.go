package prompts

import (
	"strings"

	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
)

const DefaultSystemPrompt = "Je bent de assistent van Nouvelle Équipe, een uitzendbureau. " +
	"Antwoord kort en praktisch."

var localeInstructions = map[models.Locale]string{
	models.LocaleNL: "Antwoord altijd in het Nederlands.",
	models.LocaleEN: "Always answer in English.",
	models.LocaleDE: "Antworte immer auf Deutsch.",
}

var modeInstructions = map[models.Mode]string{
	models.ModeGeneral: "Help the user with general questions about the agency and its services.",
	models.ModeSeekingWork: "The user is looking for work. Find out which kind of work, availability, " +
		"region and experience they have, and explain the next steps to register.",
	models.ModeHiring: "The user wants to hire staff. Find out the role, the number of people, " +
		"dates, hours and location, and summarise the request at the end.",
	models.ModeQuick: "Answer in at most three short sentences. Do not ask follow-up questions " +
		"unless the question cannot be answered otherwise.",
}

// Instructions builds the behavioural instructions sent to the responder for a (mode, locale) pair.
func Instructions(systemPrompt string, mode models.Mode, locale models.Locale) string {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}

	parts := []string{strings.TrimSpace(systemPrompt)}

	if instruction, ok := modeInstructions[mode]; ok {
		parts = append(parts, instruction)
	} else {
		parts = append(parts, modeInstructions[models.ModeGeneral])
	}

	if instruction, ok := localeInstructions[locale]; ok {
		parts = append(parts, instruction)
	} else {
		parts = append(parts, localeInstructions[models.DefaultLocale])
	}

	return strings.Join(parts, "\n")
}
