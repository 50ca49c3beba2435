// Package i18n holds the languages the interface and the spending assistant
// can answer in.
package i18n

import "strings"

// DefaultLanguage is used whenever a language is missing or unsupported
const DefaultLanguage = "en"

// Language describes a supported interface language
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

var languages = []Language{
	{Code: "en", Name: "English", Flag: "🇬🇧"},
	{Code: "te", Name: "తెలుగు", Flag: "🇮🇳"},
	{Code: "kn", Name: "ಕನ್ನಡ", Flag: "🇮🇳"},
}

var instructions = map[string]string{
	"en": "Respond in English.",
	"te": "Respond in Telugu language with proper script.",
	"kn": "Respond in Kannada language with proper script.",
}

// Languages returns the supported languages in display order
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Supported reports whether code names a supported language
func Supported(code string) bool {
	_, ok := instructions[code]
	return ok
}

// Normalize lowercases code and falls back to DefaultLanguage when unsupported
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if !Supported(code) {
		return DefaultLanguage
	}
	return code
}

// Instruction returns the answer-language instruction given to the model
func Instruction(code string) string {
	return instructions[Normalize(code)]
}

// TextsFor returns the interface strings for code
func TextsFor(code string) Texts {
	return texts[Normalize(code)]
}
