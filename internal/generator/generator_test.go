package generator

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kapu/lingo-digest-bot/internal/config"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

type fakeGenerator struct {
	replies []string
	failAt  int
	prompts []string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	call := len(f.prompts)
	if f.failAt == call {
		return "", fmt.Errorf("backend exploded on call %d", call)
	}
	if call <= len(f.replies) {
		return f.replies[call-1], nil
	}
	return fmt.Sprintf("reply %d", call), nil
}

type fakeChat struct {
	resp *genai.GenerateContentResponse
	err  error
	sent []genai.Part
}

func (f *fakeChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.sent = append(f.sent, parts...)
	return f.resp, f.err
}

func TestSelectReplySkipsTaggedAndUserMessages(t *testing.T) {
	messages := []Message{
		{Author: "user", Text: "prompt echo"},
		{Author: AuthorAssistant, Type: MessageTypeThought, Text: "thinking..."},
		{Author: AuthorAssistant, Text: "the answer"},
		{Author: AuthorAssistant, Text: "a later answer"},
	}

	reply, err := SelectReply(messages)
	if err != nil {
		t.Fatalf("expected reply, got %v", err)
	}
	if reply.Text != "the answer" {
		t.Fatalf("expected first untagged assistant message, got %q", reply.Text)
	}
}

func TestSelectReplyNoneQualifies(t *testing.T) {
	_, err := SelectReply([]Message{
		{Author: "user", Text: "hi"},
		{Author: AuthorAssistant, Type: MessageTypeThought, Text: "hmm"},
	})
	if !stderrors.Is(err, errors.ErrNoReplyFound) {
		t.Fatalf("expected ErrNoReplyFound, got %v", err)
	}

	if _, err := SelectReply(nil); !stderrors.Is(err, errors.ErrNoReplyFound) {
		t.Fatalf("expected ErrNoReplyFound for empty input, got %v", err)
	}
}

func TestGeminiSessionProviderFiltersThoughts(t *testing.T) {
	chat := &fakeChat{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					{Text: "let me think", Thought: true},
					{Text: "Había una vez un gato."},
				},
			},
		}},
	}}

	var openedModel string
	provider := newGeminiSessionProvider(func(_ context.Context, model string, _ *genai.GenerateContentConfig) (chatSession, error) {
		openedModel = model
		return chat, nil
	}, "gemini-test", zap.NewNop())

	out, err := provider.Generate(context.Background(), "write a story")
	if err != nil {
		t.Fatalf("expected reply, got %v", err)
	}
	if out != "Había una vez un gato." {
		t.Fatalf("unexpected reply %q", out)
	}
	if openedModel != "gemini-test" {
		t.Fatalf("expected session opened with configured model, got %q", openedModel)
	}
	if len(chat.sent) != 1 || chat.sent[0].Text != "write a story" {
		t.Fatalf("expected prompt to be sent once, got %+v", chat.sent)
	}
}

func TestGeminiSessionProviderNoReply(t *testing.T) {
	chat := &fakeChat{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: "only thoughts", Thought: true}},
			},
		}},
	}}
	provider := newGeminiSessionProvider(func(context.Context, string, *genai.GenerateContentConfig) (chatSession, error) {
		return chat, nil
	}, "m", zap.NewNop())

	if _, err := provider.Generate(context.Background(), "p"); !stderrors.Is(err, errors.ErrNoReplyFound) {
		t.Fatalf("expected ErrNoReplyFound, got %v", err)
	}
}

func TestOpenAIProviderReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "tell me a story") {
			t.Errorf("prompt missing from request: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Érase una vez"}}],
			"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("sk-test", srv.URL+"/", "gpt-test", zap.NewNop())
	out, err := provider.Generate(context.Background(), "tell me a story")
	if err != nil {
		t.Fatalf("expected completion, got %v", err)
	}
	if out != "Érase una vez" {
		t.Fatalf("unexpected completion %q", out)
	}
}

func TestResolveBackend(t *testing.T) {
	cases := []struct {
		name    string
		backend string
		openai  string
		gemini  string
		want    string
		wantErr bool
	}{
		{name: "openai preferred", openai: "k1", gemini: "k2", want: BackendOpenAI},
		{name: "gemini only", gemini: "k2", want: BackendGemini},
		{name: "forced gemini", backend: BackendGemini, openai: "k1", gemini: "k2", want: BackendGemini},
		{name: "forced openai without key", backend: BackendOpenAI, gemini: "k2", wantErr: true},
		{name: "nothing configured", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ResolveBackend(config.GeneratorConfig{Backend: tc.backend}, tc.openai, tc.gemini)
		if tc.wantErr {
			var genErr *errors.ContentGenerationError
			if !stderrors.As(err, &genErr) {
				t.Fatalf("%s: expected ContentGenerationError, got %v", tc.name, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s: expected %s, got %s (%v)", tc.name, tc.want, got, err)
		}
	}
}

func TestContentServiceGeneratesAllFourTexts(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"```\nUna historia con sol.\n```",
		"一个有太阳的故事。",
		"M: Hola\nF: Adiós",
		"M: 你好\nF: 再见",
	}}
	svc := NewContentService(gen, "Chinese", 100, zap.NewNop())

	content, err := svc.Generate(context.Background(), []string{"sol", "casa"}, "Spanish")
	if err != nil {
		t.Fatalf("expected content, got %v", err)
	}
	if content.Story != "Una historia con sol." {
		t.Fatalf("expected code fence stripped, got %q", content.Story)
	}
	if content.StoryTranslation != "一个有太阳的故事。" || content.Dialogue != "M: Hola\nF: Adiós" || content.DialogueTranslation != "M: 你好\nF: 再见" {
		t.Fatalf("unexpected content: %+v", content)
	}

	if len(gen.prompts) != 4 {
		t.Fatalf("expected four generation calls, got %d", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "sol, casa") || !strings.Contains(gen.prompts[0], "Spanish") {
		t.Fatalf("story prompt missing words or language:\n%s", gen.prompts[0])
	}
	if !strings.Contains(gen.prompts[1], "Una historia con sol.") || !strings.Contains(gen.prompts[1], "Chinese") {
		t.Fatalf("translation prompt missing story:\n%s", gen.prompts[1])
	}
	if !strings.Contains(gen.prompts[3], "M: Hola") {
		t.Fatalf("dialogue translation prompt missing dialogue:\n%s", gen.prompts[3])
	}
}

func TestContentServiceStopsAtFirstFailure(t *testing.T) {
	gen := &fakeGenerator{failAt: 2}
	svc := NewContentService(gen, "", 0, zap.NewNop())

	_, err := svc.Generate(context.Background(), []string{"sol"}, "Spanish")
	var genErr *errors.ContentGenerationError
	if !stderrors.As(err, &genErr) {
		t.Fatalf("expected ContentGenerationError, got %v", err)
	}
	if genErr.Step != "story_translation" {
		t.Fatalf("expected failure at story_translation, got %s", genErr.Step)
	}
	if len(gen.prompts) != 2 {
		t.Fatalf("expected generation to stop after the failing call, got %d calls", len(gen.prompts))
	}
	if errors.IsFatal(err) {
		t.Fatalf("content generation errors must not be fatal to the whole run")
	}
}

func TestContentServiceWithoutGenerator(t *testing.T) {
	svc := NewContentService(nil, "", 0, zap.NewNop())
	_, err := svc.Generate(context.Background(), []string{"sol"}, "Spanish")
	if errors.CodeOf(err) != errors.CodeContentGeneration {
		t.Fatalf("expected content generation code, got %q", errors.CodeOf(err))
	}
}
