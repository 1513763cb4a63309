package detector

// Maps detected codes to ISO 639-1, "und" for unknown.
var langCodeMapping = map[string]string{
    "en": "en", "fr": "fr", "es": "es", "de": "de", "it": "it", "pt": "pt",
    "nl": "nl", "ru": "ru", "zh": "zh", "ja": "ja", "ko": "ko", "ar": "ar",
    "hi": "hi", "tr": "tr", "pl": "pl", "sv": "sv", "fi": "fi", "no": "no",
    "da": "da", "cs": "cs", "hu": "hu", "ro": "ro", "el": "el", "he": "he",
}

// MapLanguage normalizes a raw model language code.
func MapLanguage(raw string) string {
    if mapped, ok := langCodeMapping[raw]; ok {
        return mapped
    }
    return "und"
}
