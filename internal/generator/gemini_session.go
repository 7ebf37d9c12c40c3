package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatOpener func(ctx context.Context, model string, config *genai.GenerateContentConfig) (chatSession, error)

// GeminiSessionProvider opens a fresh chat session per prompt and picks the
// assistant's reply out of the returned messages.
type GeminiSessionProvider struct {
	openChat chatOpener
	model    string
	preset   ModelPreset
	logger   *zap.Logger
}

func NewGeminiSessionProvider(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiSessionProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	opener := func(ctx context.Context, model string, config *genai.GenerateContentConfig) (chatSession, error) {
		return client.Chats.Create(ctx, model, config, nil)
	}
	return newGeminiSessionProvider(opener, model, logger), nil
}

func newGeminiSessionProvider(opener chatOpener, model string, logger *zap.Logger) *GeminiSessionProvider {
	return &GeminiSessionProvider{
		openChat: opener,
		model:    model,
		preset:   PresetCreative,
		logger:   logger,
	}
}

func (g *GeminiSessionProvider) Name() string {
	return "Gemini"
}

func (g *GeminiSessionProvider) Generate(ctx context.Context, prompt string) (string, error) {
	config := GetPresetConfig(g.preset)
	topK := float32(config.TopK)

	chat, err := g.openChat(ctx, g.model, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(config.Temperature),
		TopP:            genai.Ptr(config.TopP),
		TopK:            &topK,
		MaxOutputTokens: int32(config.MaxOutputTokens),
	})
	if err != nil {
		g.logger.Error("Failed to open Gemini chat session", zap.Error(err))
		return "", err
	}

	g.logger.Debug("Sending prompt to Gemini chat session", zap.String("model", g.model))

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		g.logger.Error("Gemini generation failed", zap.Error(err))
		return "", err
	}

	messages := messagesFromResponse(resp)
	reply, err := SelectReply(messages)
	if err != nil {
		g.logger.Warn("Gemini response had no usable reply", zap.Int("messages", len(messages)))
		return "", err
	}

	g.logger.Debug("Gemini response received", zap.Int("length", len(reply.Text)))
	return reply.Text, nil
}
