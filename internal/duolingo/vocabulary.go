package duolingo

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/domain"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

//go:embed schema/vocabulary.json
var vocabularySchemaJSON []byte

const vocabularySchemaURL = "mem://duolingo/vocabulary.json"

var (
	vocabularySchema     *jsonschema.Schema
	vocabularySchemaOnce sync.Once
	vocabularySchemaErr  error
)

func compiledVocabularySchema() (*jsonschema.Schema, error) {
	vocabularySchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(vocabularySchemaURL, bytes.NewReader(vocabularySchemaJSON)); err != nil {
			vocabularySchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		vocabularySchema, vocabularySchemaErr = compiler.Compile(vocabularySchemaURL)
	})
	return vocabularySchema, vocabularySchemaErr
}

// ValidateVocabularyPayload checks a raw overview response against the
// embedded schema.
func ValidateVocabularyPayload(raw []byte) error {
	schema, err := compiledVocabularySchema()
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return schema.Validate(payload)
}

type vocabularyResponse struct {
	LearningLanguage string                   `json:"learning_language"`
	VocabOverview    []domain.VocabularyEntry `json:"vocab_overview"`
}

// FetchVocabulary returns the full vocabulary overview in server order.
func (c *Client) FetchVocabulary(ctx context.Context, session *Session) ([]domain.VocabularyEntry, error) {
	_, body, err := c.doRequest(ctx, session.HTTPClient(), http.MethodGet, "/vocabulary/overview", nil)
	if err != nil {
		c.logger.Error("Failed to fetch vocabulary", zap.Error(err))
		return nil, errors.NewVocabularyFetchError("get duolingo words failed", errors.StatusCode(err), err)
	}

	if err := ValidateVocabularyPayload(body); err != nil {
		c.logger.Error("Vocabulary payload failed schema validation", zap.Error(err))
		return nil, errors.NewVocabularyFetchError("unexpected vocabulary payload", http.StatusOK, err)
	}

	var raw vocabularyResponse
	if err := decodeJSON(body, &raw); err != nil {
		return nil, errors.NewVocabularyFetchError("vocabulary response unreadable", http.StatusOK, err)
	}

	c.logger.Info("Vocabulary fetched", zap.Int("entries", len(raw.VocabOverview)))
	return raw.VocabOverview, nil
}
