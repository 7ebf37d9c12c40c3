package domain

import (
	"strings"

	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/internal/util"
)

type Speaker string

const (
	SpeakerMale   Speaker = "male"
	SpeakerFemale Speaker = "female"
)

func (s Speaker) String() string {
	return string(s)
}

// DialogueLine is one spoken line with its speaker tag removed.
type DialogueLine struct {
	Speaker Speaker
	Text    string
}

// SpeakerOf returns the speaker a line is tagged with.
func SpeakerOf(line string) (Speaker, string, bool) {
	switch {
	case strings.HasPrefix(line, constants.SpeakerPrefix.Male):
		return SpeakerMale, strings.TrimSpace(strings.TrimPrefix(line, constants.SpeakerPrefix.Male)), true
	case strings.HasPrefix(line, constants.SpeakerPrefix.Female):
		return SpeakerFemale, strings.TrimSpace(strings.TrimPrefix(line, constants.SpeakerPrefix.Female)), true
	}
	return "", "", false
}

// ParseDialogue keeps the tagged lines of text in speaking order. Untagged and
// empty-after-tag lines are skipped.
func ParseDialogue(text string) []DialogueLine {
	lines := make([]DialogueLine, 0)
	for _, raw := range util.NonEmptyLines(text) {
		speaker, body, ok := SpeakerOf(raw)
		if !ok || body == "" {
			continue
		}
		lines = append(lines, DialogueLine{Speaker: speaker, Text: body})
	}
	return lines
}
