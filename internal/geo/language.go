package geo

// countryLanguage maps ISO country codes to the language product text is
// localized into. Unmapped codes fall back to English.
var countryLanguage = map[string]string{
	"ro": "Romanian",
	"us": "English",
	"gb": "English",
	"ca": "English",
	"au": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"br": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"ru": "Russian",
	"jp": "Japanese",
	"cn": "Chinese",
	"kr": "Korean",
	"in": "Hindi",
	"mx": "Spanish",
	"ar": "Spanish",
}

// LanguageForCountry returns the display language for a country code.
func LanguageForCountry(code string) string {
	if lang, ok := countryLanguage[code]; ok {
		return lang
	}
	return "English"
}
