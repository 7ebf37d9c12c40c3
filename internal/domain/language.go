package domain

import "github.com/kapu/lingo-digest-bot/internal/util"

var languageNames = map[string]string{
	"ar":    "Arabic",
	"de":    "German",
	"dn":    "Dutch",
	"el":    "Greek",
	"en":    "English",
	"es":    "Spanish",
	"fr":    "French",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"ru":    "Russian",
	"sv":    "Swedish",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"zs":    "Chinese",
	"zh":    "Chinese",
	"zh-cn": "Chinese",
}

// LanguageName maps a Duolingo language code to an English language name. The
// code itself is returned for unknown languages.
func LanguageName(code string) string {
	if name, ok := languageNames[util.Normalize(code)]; ok {
		return name
	}
	return code
}
