package config

import (
	stderrors "errors"
	"testing"

	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Duolingo:  DuolingoConfig{Username: "learner", Password: "secret"},
		Messenger: MessengerConfig{Kind: "telegram"},
		Digest:    DigestConfig{WordCount: 20, ScratchDir: "scratch"},
	}
}

func TestParseWordCountFallsBackOnGarbage(t *testing.T) {
	n, err := ParseWordCount("abc")
	if err == nil {
		t.Fatalf("expected parse error for %q", "abc")
	}
	if n != constants.DefaultWordCount {
		t.Fatalf("expected default %d, got %d", constants.DefaultWordCount, n)
	}
	if n != 20 {
		t.Fatalf("expected documented default of 20, got %d", n)
	}
}

func TestParseWordCount(t *testing.T) {
	cases := map[string]int{
		"5":    5,
		" 12 ": 12,
		"0":    constants.DefaultWordCount,
		"-3":   constants.DefaultWordCount,
		"":     constants.DefaultWordCount,
	}
	for raw, want := range cases {
		got, _ := ParseWordCount(raw)
		if got != want {
			t.Fatalf("ParseWordCount(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestValidateRequiresCredential(t *testing.T) {
	cfg := validConfig()
	cfg.Duolingo.Password = ""
	cfg.Duolingo.Token = ""

	err := cfg.Validate()
	var cfgErr *errors.ConfigurationError
	if !stderrors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !errors.IsFatal(err) {
		t.Fatalf("expected configuration error to be fatal")
	}
}

func TestValidateAcceptsTokenOnly(t *testing.T) {
	cfg := validConfig()
	cfg.Duolingo.Password = ""
	cfg.Duolingo.Token = "jwt"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected token-only config to validate, got %v", err)
	}
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	cfg := validConfig()
	cfg.Messenger.Kind = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown messenger to fail validation")
	}

	cfg = validConfig()
	cfg.Generator.Backend = "markov"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown generator backend to fail validation")
	}
}

func TestHasDestination(t *testing.T) {
	cfg := validConfig()
	if cfg.HasDestination() {
		t.Fatalf("expected no destination without chat id")
	}

	cfg.Messenger.ChatID = "12345"
	if cfg.HasDestination() {
		t.Fatalf("expected telegram destination to require a token")
	}

	cfg.Telegram.Token = "bot-token"
	if !cfg.HasDestination() {
		t.Fatalf("expected destination once chat id and token are set")
	}

	cfg.Messenger.Kind = "iris"
	cfg.Telegram.Token = ""
	if !cfg.HasDestination() {
		t.Fatalf("expected iris destination to need only a room")
	}
}
