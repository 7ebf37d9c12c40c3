package narration

import (
	"fmt"
	"math/rand"

	"github.com/kapu/lingo-digest-bot/internal/domain"
	"github.com/kapu/lingo-digest-bot/internal/util"
)

// VoicePair lists the voices available for each speaker of one language.
type VoicePair struct {
	Male   []string
	Female []string
}

// VoiceTable maps Duolingo language codes to Polly voice IDs.
type VoiceTable map[string]VoicePair

// DefaultVoices covers the languages Duolingo teaches that Polly can speak.
var DefaultVoices = VoiceTable{
	"en": {Male: []string{"Matthew", "Joey", "Justin"}, Female: []string{"Joanna", "Kendra", "Salli"}},
	"es": {Male: []string{"Enrique", "Sergio"}, Female: []string{"Lucia", "Conchita", "Lupe"}},
	"fr": {Male: []string{"Mathieu", "Remi"}, Female: []string{"Celine", "Lea"}},
	"de": {Male: []string{"Hans", "Daniel"}, Female: []string{"Marlene", "Vicki"}},
	"it": {Male: []string{"Giorgio", "Adriano"}, Female: []string{"Carla", "Bianca"}},
	"pt": {Male: []string{"Ricardo", "Cristiano"}, Female: []string{"Camila", "Vitoria", "Ines"}},
	"ja": {Male: []string{"Takumi"}, Female: []string{"Mizuki", "Kazuha"}},
	"ko": {Male: []string{"Seoyeon"}, Female: []string{"Seoyeon"}},
	"zh": {Male: []string{"Zhiyu"}, Female: []string{"Zhiyu"}},
	"zs": {Male: []string{"Zhiyu"}, Female: []string{"Zhiyu"}},
	"nl": {Male: []string{"Ruben"}, Female: []string{"Lotte", "Laura"}},
	"dn": {Male: []string{"Ruben"}, Female: []string{"Lotte", "Laura"}},
	"pl": {Male: []string{"Jacek", "Jan"}, Female: []string{"Ewa", "Maja", "Ola"}},
	"ru": {Male: []string{"Maxim"}, Female: []string{"Tatyana"}},
	"sv": {Male: []string{"Astrid"}, Female: []string{"Astrid", "Elin"}},
	"tr": {Male: []string{"Filiz"}, Female: []string{"Filiz", "Burcu"}},
}

// PickVoice returns a random voice for the speaker in the given language.
func (t VoiceTable) PickVoice(lang string, speaker domain.Speaker, rnd *rand.Rand) (string, error) {
	pair, ok := t[util.Normalize(lang)]
	if !ok {
		return "", fmt.Errorf("no voices configured for language %q", lang)
	}

	var candidates []string
	switch speaker {
	case domain.SpeakerMale:
		candidates = pair.Male
	case domain.SpeakerFemale:
		candidates = pair.Female
	default:
		return "", fmt.Errorf("unknown speaker %q", speaker)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no %s voices configured for language %q", speaker, lang)
	}
	return candidates[rnd.Intn(len(candidates))], nil
}
