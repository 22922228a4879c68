package detector

// Strong interrogatives per language: a message whose first word is one
// of these is classified as a question without consulting the remote
// classifier. Keyed by ISO 639-1 code; unknown codes fall back to
// Swedish, the language this exporter was built for.
var strongKeywords = map[string][]string{
	"sv": {
		"varför", "hur", "vad", "när", "vem", "vilken", "vilket", "vilka",
		"var", "vart", "hurdan",
	},
	"en": {
		"who", "what", "when", "where", "why", "how", "which", "whose", "whom",
	},
}

const defaultLanguage = "sv"

func keywordsForLanguage(lang string) []string {
	if ks, ok := strongKeywords[lang]; ok {
		return ks
	}
	return strongKeywords[defaultLanguage]
}
