package services

import "github.com/maxaizer/tg-relay-bot/internal/domain/models"

type localized map[models.Locale]string

func (l localized) in(locale models.Locale) string {
	if text, ok := l[locale]; ok {
		return text
	}
	return l[models.DefaultLocale]
}

var (
	welcomeText = localized{
		models.LocaleNL: "Hi! Stuur je vraag, dan help ik je verder 🙌",
		models.LocaleEN: "Hi! Send me your question and I'll help you out 🙌",
		models.LocaleDE: "Hallo! Schick mir deine Frage, dann helfe ich dir weiter 🙌",
	}
	chooseFirstText = localized{
		models.LocaleNL: "Kies eerst waar je hulp bij zoekt 👇",
		models.LocaleEN: "Please choose what you need help with first 👇",
		models.LocaleDE: "Bitte wähle zuerst, wobei du Hilfe brauchst 👇",
	}
	sendTextText = localized{
		models.LocaleNL: "Stuur me je vraag als tekstbericht, alsjeblieft.",
		models.LocaleEN: "Please send your question as a text message.",
		models.LocaleDE: "Bitte schick mir deine Frage als Textnachricht.",
	}
	apologyText = localized{
		models.LocaleNL: "Oeps, er ging iets mis. Probeer het zo nog eens.",
		models.LocaleEN: "Oops, something went wrong. Please try again in a moment.",
		models.LocaleDE: "Hoppla, da ist etwas schiefgelaufen. Versuch es gleich noch einmal.",
	}
	resetText = localized{
		models.LocaleNL: "Alles is gewist. We beginnen opnieuw ✨",
		models.LocaleEN: "Everything has been cleared. Let's start over ✨",
		models.LocaleDE: "Alles wurde gelöscht. Wir fangen neu an ✨",
	}
	menuText = localized{
		models.LocaleNL: "Waar kan ik je mee helpen? Je kunt ook de taal kiezen.",
		models.LocaleEN: "What can I help you with? You can also pick a language.",
		models.LocaleDE: "Wobei kann ich dir helfen? Du kannst auch die Sprache wählen.",
	}
	helpText = localized{
		models.LocaleNL: "Stuur gewoon je vraag.\n/menu kies onderwerp of taal\n/reset begin opnieuw",
		models.LocaleEN: "Just send your question.\n/menu pick a topic or language\n/reset start over",
		models.LocaleDE: "Schick einfach deine Frage.\n/menu Thema oder Sprache wählen\n/reset neu anfangen",
	}
	unknownCommandText = localized{
		models.LocaleNL: "Dat commando ken ik niet. Probeer /help.",
		models.LocaleEN: "I don't know that command. Try /help.",
		models.LocaleDE: "Diesen Befehl kenne ich nicht. Versuch /help.",
	}
	unknownOptionText = localized{
		models.LocaleNL: "Die keuze ken ik niet. Kies een optie uit het menu.",
		models.LocaleEN: "I don't know that option. Please pick one from the menu.",
		models.LocaleDE: "Diese Option kenne ich nicht. Bitte wähle eine aus dem Menü.",
	}
	// confirmationText is formatted with the mode label and the language name.
	confirmationText = localized{
		models.LocaleNL: "✅ Onderwerp: %s. Taal: %s.",
		models.LocaleEN: "✅ Topic: %s. Language: %s.",
		models.LocaleDE: "✅ Thema: %s. Sprache: %s.",
	}
)

var modeLabels = map[models.Locale]map[models.Mode]string{
	models.LocaleNL: {
		models.ModeUnset:       "nog niet gekozen",
		models.ModeGeneral:     "Algemene vraag",
		models.ModeSeekingWork: "Ik zoek werk",
		models.ModeHiring:      "Ik zoek personeel",
		models.ModeQuick:       "Snelle vraag",
	},
	models.LocaleEN: {
		models.ModeUnset:       "not chosen yet",
		models.ModeGeneral:     "General question",
		models.ModeSeekingWork: "I'm looking for work",
		models.ModeHiring:      "I'm hiring",
		models.ModeQuick:       "Quick question",
	},
	models.LocaleDE: {
		models.ModeUnset:       "noch nicht gewählt",
		models.ModeGeneral:     "Allgemeine Frage",
		models.ModeSeekingWork: "Ich suche Arbeit",
		models.ModeHiring:      "Ich suche Personal",
		models.ModeQuick:       "Kurze Frage",
	},
}

var localeNames = map[models.Locale]string{
	models.LocaleNL: "Nederlands",
	models.LocaleEN: "English",
	models.LocaleDE: "Deutsch",
}

var localeFlags = map[models.Locale]string{
	models.LocaleNL: "🇳🇱",
	models.LocaleEN: "🇬🇧",
	models.LocaleDE: "🇩🇪",
}

func modeLabel(mode models.Mode, locale models.Locale) string {
	labels, ok := modeLabels[locale]
	if !ok {
		labels = modeLabels[models.DefaultLocale]
	}
	return labels[mode]
}
