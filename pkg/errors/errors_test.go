package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestCodeOfFindsWrappedErrors(t *testing.T) {
	cause := NewAPIError("Duolingo API error: 403 Forbidden", 403, nil)
	err := fmt.Errorf("run: %w", NewAuthenticationError("login failed", "learner", 403, cause))

	if got := CodeOf(err); got != CodeAuthentication {
		t.Fatalf("expected %s, got %s", CodeAuthentication, got)
	}
	if StatusCode(err) != 403 {
		t.Fatalf("expected status from wrapped APIError, got %d", StatusCode(err))
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Fatalf("expected empty code for foreign errors")
	}
}

func TestIsFatal(t *testing.T) {
	fatal := []error{
		NewConfigurationError("missing", "DUOLINGO_USERNAME"),
		NewAuthenticationError("login failed", "u", 401, nil),
		NewProfileFetchError("get profile failed", 500, nil),
		NewVocabularyFetchError("get words failed", 500, nil),
	}
	for _, err := range fatal {
		if !IsFatal(err) {
			t.Fatalf("expected %v to be fatal", err)
		}
	}

	recoverable := []error{
		NewContentGenerationError("text generation failed", "OpenAI", "story", nil),
		NewDeliveryError("failed to deliver story", "telegram", 400, nil),
		NewAPIError("request failed", 500, nil),
		nil,
	}
	for _, err := range recoverable {
		if IsFatal(err) {
			t.Fatalf("expected %v to be recoverable", err)
		}
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := NewContentGenerationError("text generation failed", "Gemini", "dialogue", ErrNoReplyFound)
	if err.Error() != "text generation failed: no assistant reply found in response" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !stderrors.Is(err, ErrNoReplyFound) {
		t.Fatalf("expected sentinel reachable through Unwrap")
	}
	if err.Step != "dialogue" || err.Backend != "Gemini" {
		t.Fatalf("unexpected fields %+v", err)
	}
}
