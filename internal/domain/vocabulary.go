package domain

import (
	"sort"

	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/internal/util"
)

// VocabularyEntry is one learned word with its last practice time.
type VocabularyEntry struct {
	WordString       string `json:"word_string"`
	NormalizedString string `json:"normalized_string"`
	LexemeID         string `json:"lexeme_id"`
	LastPracticedMs  int64  `json:"last_practiced_ms"`
}

// IsPlaceholder reports whether the entry is a sentinel rather than a word.
func (v VocabularyEntry) IsPlaceholder() bool {
	return v.NormalizedString == constants.PlaceholderSentinel
}

// SelectRecent drops placeholders, orders the rest by last practice time
// (newest first) and keeps at most n. The input slice is not modified.
func SelectRecent(entries []VocabularyEntry, n int) []VocabularyEntry {
	if n <= 0 {
		return []VocabularyEntry{}
	}

	words := make([]VocabularyEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsPlaceholder() {
			continue
		}
		words = append(words, entry)
	}

	sort.SliceStable(words, func(i, j int) bool {
		return words[i].LastPracticedMs > words[j].LastPracticedMs
	})

	return words[:util.Min(n, len(words))]
}

// WordStrings returns the display strings of entries, in order.
func WordStrings(entries []VocabularyEntry) []string {
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.WordString
	}
	return out
}
