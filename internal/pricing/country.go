package pricing

import "strings"

// sourceTLDs maps merchant-name TLD suffixes to country codes. Longer
// suffixes first so ".co.uk" matches before ".uk" would.
var sourceTLDs = []struct {
	suffix string
	code   string
}{
	{".co.uk", "gb"},
	{".com.au", "au"},
	{".com.br", "br"},
	{".com.mx", "mx"},
	{".com.ar", "ar"},
	{".de", "de"},
	{".fr", "fr"},
	{".it", "it"},
	{".es", "es"},
	{".nl", "nl"},
	{".pl", "pl"},
	{".ro", "ro"},
	{".pt", "pt"},
	{".ca", "ca"},
	{".jp", "jp"},
	{".in", "in"},
	{".ru", "ru"},
	{".cn", "cn"},
	{".kr", "kr"},
}

// merchantCountries covers well-known merchants whose names carry no TLD.
var merchantCountries = map[string]string{
	"mediamarkt": "de",
	"saturn":     "de",
	"otto":       "de",
	"fnac":       "fr",
	"darty":      "fr",
	"currys":     "gb",
	"argos":      "gb",
	"coolblue":   "nl",
	"allegro":    "pl",
	"emag":       "ro",
	"unieuro":    "it",
}

// SourceCountry guesses a merchant's country from its source name.
// Returns "" when the country cannot be determined.
func SourceCountry(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	for _, tld := range sourceTLDs {
		if strings.HasSuffix(s, tld.suffix) {
			return tld.code
		}
	}
	for name, code := range merchantCountries {
		if strings.Contains(s, name) {
			return code
		}
	}
	return ""
}

// FilterByCountry keeps offers whose merchant matches the requester's
// country. The signal is a best-effort heuristic, so offers of
// indeterminate country are kept (assumed local) rather than discarded.
func FilterByCountry(offers []Offer, countryCode string) []Offer {
	if countryCode == "" {
		return offers
	}
	cc := strings.ToLower(countryCode)
	filtered := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if sc := SourceCountry(o.Source); sc == "" || sc == cc {
			filtered = append(filtered, o)
		}
	}
	return filtered
}
