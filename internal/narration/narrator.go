package narration

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/domain"
)

// SpeechSynthesizer is implemented by Synthesizer.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Narrator writes narrated story and dialogue audio to the scratch directory.
type Narrator struct {
	synth  SpeechSynthesizer
	voices VoiceTable
	rnd    *rand.Rand
	logger *zap.Logger
}

func NewNarrator(synth SpeechSynthesizer, voices VoiceTable, rnd *rand.Rand, logger *zap.Logger) *Narrator {
	if voices == nil {
		voices = DefaultVoices
	}
	return &Narrator{
		synth:  synth,
		voices: voices,
		rnd:    rnd,
		logger: logger,
	}
}

// NarrateStory reads the whole story with one randomly chosen voice and writes
// {dir}/story.mp3.
func (n *Narrator) NarrateStory(ctx context.Context, lang, story, dir string) (domain.AudioArtifact, error) {
	gender := domain.SpeakerFemale
	if n.rnd.Intn(2) == 0 {
		gender = domain.SpeakerMale
	}
	voice, err := n.voices.PickVoice(lang, gender, n.rnd)
	if err != nil {
		return domain.AudioArtifact{}, err
	}

	audio, err := n.synth.Synthesize(ctx, story, voice)
	if err != nil {
		return domain.AudioArtifact{}, fmt.Errorf("narrate story: %w", err)
	}

	path := filepath.Join(dir, "story.mp3")
	if err := writeAudio(path, audio); err != nil {
		return domain.AudioArtifact{}, err
	}

	n.logger.Info("Story narrated", zap.String("voice", voice), zap.String("path", path))
	return domain.AudioArtifact{Kind: domain.ArtifactStory, Path: path, Speaker: gender, Text: story}, nil
}

// NarrateDialogue speaks each tagged line with one male and one female voice
// fixed for the whole dialogue. Lines are written to {dir}/dialogue/{i}.mp3 in
// speaking order, starting at 1.
func (n *Narrator) NarrateDialogue(ctx context.Context, lang, dialogue, dir string) ([]domain.AudioArtifact, error) {
	lines := domain.ParseDialogue(dialogue)
	if len(lines) == 0 {
		return nil, fmt.Errorf("dialogue has no speaker-tagged lines")
	}

	cast := make(map[domain.Speaker]string, 2)
	for _, speaker := range []domain.Speaker{domain.SpeakerMale, domain.SpeakerFemale} {
		voice, err := n.voices.PickVoice(lang, speaker, n.rnd)
		if err != nil {
			return nil, err
		}
		cast[speaker] = voice
	}

	outDir := filepath.Join(dir, "dialogue")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create dialogue dir: %w", err)
	}

	artifacts := make([]domain.AudioArtifact, 0, len(lines))
	for i, line := range lines {
		audio, err := n.synth.Synthesize(ctx, line.Text, cast[line.Speaker])
		if err != nil {
			return artifacts, fmt.Errorf("narrate dialogue line %d: %w", i+1, err)
		}

		path := filepath.Join(outDir, strconv.Itoa(i+1)+".mp3")
		if err := writeAudio(path, audio); err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, domain.AudioArtifact{
			Kind:    domain.ArtifactDialogue,
			Index:   i + 1,
			Path:    path,
			Speaker: line.Speaker,
			Text:    line.Text,
		})
	}

	n.logger.Info("Dialogue narrated",
		zap.String("male_voice", cast[domain.SpeakerMale]),
		zap.String("female_voice", cast[domain.SpeakerFemale]),
		zap.Int("lines", len(artifacts)),
	)
	return artifacts, nil
}

func writeAudio(path string, audio []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
