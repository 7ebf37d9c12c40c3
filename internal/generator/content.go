package generator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/internal/domain"
	"github.com/kapu/lingo-digest-bot/internal/prompt"
	"github.com/kapu/lingo-digest-bot/internal/util"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// ContentService turns a word selection into a story, a dialogue and their
// translations.
type ContentService struct {
	generator         TextGenerator
	prompts           *prompt.PromptBuilder
	translateLanguage string
	storyMaxWords     int
	logger            *zap.Logger
}

func NewContentService(generator TextGenerator, translateLanguage string, storyMaxWords int, logger *zap.Logger) *ContentService {
	if translateLanguage == "" {
		translateLanguage = constants.GeneratorConfig.TranslateLanguage
	}
	if storyMaxWords <= 0 {
		storyMaxWords = constants.GeneratorConfig.StoryMaxWords
	}
	return &ContentService{
		generator:         generator,
		prompts:           prompt.DefaultPromptBuilder(),
		translateLanguage: translateLanguage,
		storyMaxWords:     storyMaxWords,
		logger:            logger,
	}
}

// Generate produces all four texts in order. The first failing step aborts
// the rest.
func (s *ContentService) Generate(ctx context.Context, words []string, languageName string) (*domain.GeneratedContent, error) {
	if s.generator == nil {
		return nil, errors.NewContentGenerationError("no text generation backend configured", "", "setup", nil)
	}
	if len(words) == 0 {
		return nil, errors.NewContentGenerationError("no words to build content from", s.generator.Name(), "setup", nil)
	}

	content := &domain.GeneratedContent{}
	var err error

	content.Story, err = s.run(ctx, "story", prompt.TemplateStory, prompt.StoryPromptData{
		Language: languageName,
		Words:    words,
		MaxWords: s.storyMaxWords,
	})
	if err != nil {
		return nil, err
	}

	content.StoryTranslation, err = s.run(ctx, "story_translation", prompt.TemplateTranslate, prompt.TranslatePromptData{
		Text:           content.Story,
		TargetLanguage: s.translateLanguage,
	})
	if err != nil {
		return nil, err
	}

	content.Dialogue, err = s.run(ctx, "dialogue", prompt.TemplateDialogue, prompt.DialoguePromptData{
		Language:     languageName,
		Words:        words,
		MalePrefix:   constants.SpeakerPrefix.Male,
		FemalePrefix: constants.SpeakerPrefix.Female,
	})
	if err != nil {
		return nil, err
	}

	content.DialogueTranslation, err = s.run(ctx, "dialogue_translation", prompt.TemplateTranslate, prompt.TranslatePromptData{
		Text:           content.Dialogue,
		TargetLanguage: s.translateLanguage,
		KeepPrefixes:   true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Study content generated",
		zap.String("backend", s.generator.Name()),
		zap.Int("story_length", len(content.Story)),
		zap.Int("dialogue_lines", len(domain.ParseDialogue(content.Dialogue))),
	)

	return content, nil
}

func (s *ContentService) run(ctx context.Context, step string, tmpl prompt.TemplateName, data any) (string, error) {
	text, err := s.prompts.Render(tmpl, data)
	if err != nil {
		return "", errors.NewContentGenerationError("failed to build prompt", s.generator.Name(), step, err)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.Timeouts.Generation)
	defer cancel()

	out, err := s.generator.Generate(ctx, text)
	if err != nil {
		return "", errors.NewContentGenerationError("text generation failed", s.generator.Name(), step, err)
	}

	out = util.StripCodeFence(out)
	if strings.TrimSpace(out) == "" {
		return "", errors.NewContentGenerationError("text generation returned nothing", s.generator.Name(), step, nil)
	}

	s.logger.Debug("Generation step finished",
		zap.String("step", step),
		zap.String("preview", util.TruncateString(out, constants.StringLimits.LogPreview)),
	)
	return out, nil
}
