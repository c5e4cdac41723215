package ai

import "fmt"

func inspirationPrompt(category, language string) string {
	return fmt.Sprintf(
		`Write a short, uplifting, and inspirational devotional text (around 100 words) suitable for a church congregation, written in the language with code "%s". `+
			`The theme should be related to "%s". The tone should be hopeful and encouraging. `+
			`Also, provide a relevant Bible verse (e.g., "John 3:16") that complements the devotional text.`,
		language, category,
	)
}

func hymnPrompt(topic, language string) string {
	return fmt.Sprintf(
		`Generate a 4-verse church hymn based on the topic: "%s", written in the language with code "%s". `+
			`The hymn must include a suitable title. `+
			`The lyrics should have a traditional structure (e.g., AABB or ABAB rhyme scheme) and use language appropriate for congregational singing. `+
			`Focus on themes of faith, hope, and worship. Each verse should be separated by a double newline.`,
		topic, language,
	)
}

func translatePrompt(text, target, source string) string {
	if source == "" {
		source = "en"
	}
	return fmt.Sprintf(
		"Translate the following text from %s to the language with ISO 639-1 code \"%s\". "+
			"Provide only the translated text, without any introductory phrases or explanations.\n\n"+
			"Text to translate:\n\"\"\"\n%s\n\"\"\"",
		source, target, text,
	)
}

// System instructions for providers without response schemas.
const (
	inspirationJSON = `Respond with a JSON object with the string fields "inspirationalText" and "bibleVerse".`
	hymnJSON        = `Respond with a JSON object with the string fields "title" and "lyrics".`
)
