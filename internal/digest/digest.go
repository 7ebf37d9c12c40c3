package digest

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/adapter"
	"github.com/kapu/lingo-digest-bot/internal/domain"
	"github.com/kapu/lingo-digest-bot/internal/duolingo"
	"github.com/kapu/lingo-digest-bot/internal/messenger"
	"github.com/kapu/lingo-digest-bot/internal/util"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// LearningService is the subset of the Duolingo client a run needs.
type LearningService interface {
	Login(ctx context.Context, username, password string) (*duolingo.Session, error)
	WithToken(ctx context.Context, username, token string) (*duolingo.Session, error)
	FetchProfile(ctx context.Context, session *duolingo.Session) (*domain.ProfileSnapshot, error)
	FetchVocabulary(ctx context.Context, session *duolingo.Session) ([]domain.VocabularyEntry, error)
	LookupVoice(ctx context.Context, session *duolingo.Session, language string) (duolingo.VoiceTemplate, error)
}

type WordAudioDownloader interface {
	Download(ctx context.Context, voice duolingo.VoiceTemplate, words []domain.VocabularyEntry, dir string) []domain.AudioArtifact
}

type ContentGenerator interface {
	Generate(ctx context.Context, words []string, languageName string) (*domain.GeneratedContent, error)
}

type Narrator interface {
	NarrateStory(ctx context.Context, lang, story, dir string) (domain.AudioArtifact, error)
	NarrateDialogue(ctx context.Context, lang, dialogue, dir string) ([]domain.AudioArtifact, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, messages ...messenger.Outgoing) messenger.DeliveryReport
}

// Options are the per-run settings resolved from config and the command line.
type Options struct {
	Username         string
	Password         string
	Token            string
	WordCount        int
	ScratchDir       string
	ContentEnabled   bool
	NarrationEnabled bool
	Location         *time.Location
}

// Dependencies are the collaborators of a run. Generator and Narrator may be
// nil when their stage is disabled.
type Dependencies struct {
	Learning   LearningService
	Downloader WordAudioDownloader
	Generator  ContentGenerator
	Narrator   Narrator
	Deliverer  Deliverer
	Formatter  *adapter.ResponseFormatter
}

// Result describes what a run produced.
type Result struct {
	Profile      *domain.ProfileSnapshot
	Words        []string
	WordAudio    []domain.AudioArtifact
	Content      *domain.GeneratedContent
	Narration    []domain.AudioArtifact
	Sent         int
	Failed       int
	ReminderSent bool
}

// Service runs the daily digest end to end.
type Service struct {
	deps   Dependencies
	opts   Options
	logger *zap.Logger
}

func NewService(deps Dependencies, opts Options, logger *zap.Logger) *Service {
	if deps.Formatter == nil {
		deps.Formatter = adapter.NewResponseFormatter()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{deps: deps, opts: opts, logger: logger}
}

// Run executes one digest. Authentication, profile and vocabulary failures
// abort immediately. A content generation failure skips the content branch
// but the streak reminder is still handled before it is returned. Audio and
// delivery failures are only logged.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	result := &Result{}

	session, err := s.authenticate(ctx)
	if err != nil {
		return result, err
	}
	s.logger.Info("Authenticated",
		zap.String("username", session.Username()),
		zap.String("account_id", session.AccountID()),
	)

	profile, err := s.deps.Learning.FetchProfile(ctx, session)
	if err != nil {
		return result, err
	}
	result.Profile = profile

	vocabulary, err := s.deps.Learning.FetchVocabulary(ctx, session)
	if err != nil {
		return result, err
	}

	selected := domain.SelectRecent(vocabulary, s.opts.WordCount)
	result.Words = domain.WordStrings(selected)
	s.logger.Info("Vocabulary selected",
		zap.Int("available", len(vocabulary)),
		zap.Int("selected", len(selected)),
		zap.Int("requested", s.opts.WordCount),
	)

	if err := os.MkdirAll(s.opts.ScratchDir, 0o755); err != nil {
		s.logger.Warn("Failed to create scratch directory", zap.String("dir", s.opts.ScratchDir), zap.Error(err))
	}

	var contentErr error
	if len(selected) > 0 {
		s.writeWordList(result.Words)
		result.WordAudio = s.downloadWordAudio(ctx, session, profile.LearningLanguage, selected)
		s.deliver(ctx, result, messenger.Outgoing{
			Label: "summary",
			Text:  s.deps.Formatter.FormatSummary(*profile, result.Words),
		})

		if s.opts.ContentEnabled {
			contentErr = s.runContent(ctx, profile.LearningLanguage, result)
		}
	} else {
		s.logger.Warn("No vocabulary words to report")
	}

	if !profile.StreakExtendedToday {
		report := s.deliver(ctx, result, messenger.Outgoing{
			Label: "reminder",
			Text:  s.deps.Formatter.FormatReminder(),
		})
		result.ReminderSent = report.Sent > 0
	}

	s.logger.Info("Digest finished",
		zap.String("day", util.FormatDay(started, s.opts.Location)),
		zap.Int("words", len(result.Words)),
		zap.Int("word_audio", len(result.WordAudio)),
		zap.Int("narration_files", len(result.Narration)),
		zap.Int("messages_sent", result.Sent),
		zap.Int("messages_failed", result.Failed),
		zap.Bool("content_ok", result.Content != nil),
		zap.Duration("elapsed", time.Since(started)),
	)

	return result, contentErr
}

func (s *Service) authenticate(ctx context.Context) (*duolingo.Session, error) {
	if s.opts.Token != "" {
		s.logger.Info("Authenticating with token", zap.String("username", s.opts.Username))
		return s.deps.Learning.WithToken(ctx, s.opts.Username, s.opts.Token)
	}
	if s.opts.Password == "" {
		return nil, errors.NewConfigurationError("either a duolingo password or a JWT is required", "DUOLINGO_PASSWORD")
	}
	s.logger.Info("Authenticating with password", zap.String("username", s.opts.Username))
	return s.deps.Learning.Login(ctx, s.opts.Username, s.opts.Password)
}

func (s *Service) writeWordList(words []string) {
	path := filepath.Join(s.opts.ScratchDir, "words.txt")
	if err := os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0o644); err != nil {
		s.logger.Warn("Failed to write word list", zap.String("path", path), zap.Error(err))
	}
}

func (s *Service) downloadWordAudio(ctx context.Context, session *duolingo.Session, lang string, selected []domain.VocabularyEntry) []domain.AudioArtifact {
	if s.deps.Downloader == nil {
		return nil
	}
	voice, err := s.deps.Learning.LookupVoice(ctx, session, lang)
	if err != nil {
		s.logger.Warn("Skipping word audio, voice lookup failed", zap.String("language", lang), zap.Error(err))
		return nil
	}
	return s.deps.Downloader.Download(ctx, voice, selected, filepath.Join(s.opts.ScratchDir, "words"))
}

// runContent generates, narrates and delivers the study texts. Only a
// generation failure is returned.
func (s *Service) runContent(ctx context.Context, lang string, result *Result) error {
	if s.deps.Generator == nil {
		return errors.NewContentGenerationError("no text generation backend configured", "", "setup", nil)
	}

	content, err := s.deps.Generator.Generate(ctx, result.Words, domain.LanguageName(lang))
	if err != nil {
		s.logger.Error("Content generation failed", zap.Error(err))
		var genErr *errors.ContentGenerationError
		if !stderrors.As(err, &genErr) {
			err = errors.NewContentGenerationError("content generation failed", "", "generate", err)
		}
		return err
	}
	result.Content = content

	if s.opts.NarrationEnabled && s.deps.Narrator != nil {
		result.Narration = s.narrate(ctx, lang, content)
	}

	f := s.deps.Formatter
	s.deliver(ctx, result,
		messenger.Outgoing{Label: "story", Text: f.FormatStory(content.Story)},
		messenger.Outgoing{Label: "story_translation", Text: f.FormatStoryTranslation(content.StoryTranslation)},
		messenger.Outgoing{Label: "dialogue", Text: f.FormatDialogue(content.Dialogue)},
		messenger.Outgoing{Label: "dialogue_translation", Text: f.FormatDialogueTranslation(content.DialogueTranslation)},
	)
	return nil
}

func (s *Service) narrate(ctx context.Context, lang string, content *domain.GeneratedContent) []domain.AudioArtifact {
	artifacts := make([]domain.AudioArtifact, 0)

	story, err := s.deps.Narrator.NarrateStory(ctx, lang, content.Story, s.opts.ScratchDir)
	if err != nil {
		s.logger.Warn("Story narration failed", zap.Error(err))
	} else {
		artifacts = append(artifacts, story)
	}

	lines, err := s.deps.Narrator.NarrateDialogue(ctx, lang, content.Dialogue, s.opts.ScratchDir)
	if err != nil {
		s.logger.Warn("Dialogue narration failed", zap.Int("lines_written", len(lines)), zap.Error(err))
	}
	artifacts = append(artifacts, lines...)

	return artifacts
}

func (s *Service) deliver(ctx context.Context, result *Result, messages ...messenger.Outgoing) messenger.DeliveryReport {
	if s.deps.Deliverer == nil {
		return messenger.DeliveryReport{Skipped: true}
	}
	report := s.deps.Deliverer.Deliver(ctx, messages...)
	result.Sent += report.Sent
	result.Failed += report.Failed
	return report
}

// UnavailableGenerator stands in for a generator whose backend could not be
// set up, so the failure surfaces at the content stage.
func UnavailableGenerator(err error) ContentGenerator {
	return unavailableGenerator{err: err}
}

type unavailableGenerator struct {
	err error
}

func (u unavailableGenerator) Generate(context.Context, []string, string) (*domain.GeneratedContent, error) {
	if u.err == nil {
		return nil, fmt.Errorf("content generator unavailable")
	}
	return nil, u.err
}
