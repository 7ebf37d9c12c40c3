package adapter

import (
	"fmt"
	"strings"

	"github.com/kapu/lingo-digest-bot/internal/domain"
	"github.com/kapu/lingo-digest-bot/internal/util"
)

type summaryData struct {
	Streak        int
	LanguageName  string
	LevelProgress float64
	Words         []string
}

type sectionData struct {
	Title string
	Body  string
}

type dialogueLine struct {
	Marker string
	Text   string
}

type dialogueData struct {
	Title string
	Lines []dialogueLine
}

var speakerMarkers = map[domain.Speaker]string{
	domain.SpeakerMale:   "🧔",
	domain.SpeakerFemale: "👩",
}

// ResponseFormatter renders the chat messages of a digest run.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

// FormatSummary renders the streak header followed by the selected words.
func (f *ResponseFormatter) FormatSummary(profile domain.ProfileSnapshot, words []string) string {
	data := summaryData{
		Streak:        profile.StreakCount,
		LanguageName:  domain.LanguageName(profile.LearningLanguage),
		LevelProgress: profile.LevelProgress,
		Words:         words,
	}
	if text, err := executeFormatterTemplate("summary.tmpl", data); err == nil {
		return text
	}
	return fmt.Sprintf("Your streak: %d\nNew words\n%s", profile.StreakCount, strings.Join(words, "\n"))
}

func (f *ResponseFormatter) FormatStory(story string) string {
	return f.section("📖 Story", story)
}

func (f *ResponseFormatter) FormatStoryTranslation(translation string) string {
	return f.section("🌐 Story translation", translation)
}

// FormatDialogue renders tagged lines with a speaker marker and keeps every
// other line as plain text in place. A dialogue with no tagged lines is sent
// as-is.
func (f *ResponseFormatter) FormatDialogue(dialogue string) string {
	return f.dialogue("💬 Dialogue", dialogue)
}

func (f *ResponseFormatter) FormatDialogueTranslation(translation string) string {
	return f.dialogue("🌐 Dialogue translation", translation)
}

func (f *ResponseFormatter) FormatReminder() string {
	if text, err := executeFormatterTemplate("reminder.tmpl", nil); err == nil {
		return text
	}
	return "You are not streak today, please note"
}

func (f *ResponseFormatter) section(title, body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	if text, err := executeFormatterTemplate("section.tmpl", sectionData{Title: title, Body: body}); err == nil {
		return text
	}
	return title + "\n\n" + body
}

func (f *ResponseFormatter) dialogue(title, text string) string {
	raw := util.NonEmptyLines(text)
	lines := make([]dialogueLine, 0, len(raw))
	tagged := 0
	for _, line := range raw {
		speaker, body, ok := domain.SpeakerOf(line)
		if !ok || body == "" {
			lines = append(lines, dialogueLine{Text: line})
			continue
		}
		lines = append(lines, dialogueLine{Marker: speakerMarkers[speaker], Text: body})
		tagged++
	}
	if tagged == 0 {
		return f.section(title, text)
	}
	if out, err := executeFormatterTemplate("dialogue.tmpl", dialogueData{Title: title, Lines: lines}); err == nil {
		return out
	}
	return f.section(title, text)
}
