package duolingo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/internal/domain"
	"github.com/kapu/lingo-digest-bot/internal/util"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// VoiceTemplate builds per-word pronunciation URLs for one language.
type VoiceTemplate struct {
	BaseURL  string
	Language string
	Voice    string
}

// URL returns the audio URL for word.
func (v VoiceTemplate) URL(word string) string {
	return fmt.Sprintf("%s/tts/%s/%s/token/%s",
		v.BaseURL,
		url.PathEscape(v.Language),
		url.PathEscape(v.Voice),
		url.PathEscape(word),
	)
}

type voiceResponse struct {
	Voice string `json:"voice"`
}

// LookupVoice asks the TTS token endpoint which voice path serves language.
func (c *Client) LookupVoice(ctx context.Context, session *Session, language string) (VoiceTemplate, error) {
	params := url.Values{}
	params.Set("lang", language)

	_, body, err := c.doRequest(ctx, session.HTTPClient(), http.MethodGet, "/api/1/tts/voices", params)
	if err != nil {
		return VoiceTemplate{}, err
	}

	var raw voiceResponse
	if err := decodeJSON(body, &raw); err != nil {
		return VoiceTemplate{}, err
	}
	if raw.Voice == "" {
		return VoiceTemplate{}, fmt.Errorf("no tts voice for language %q", language)
	}

	return VoiceTemplate{BaseURL: c.ttsURL, Language: language, Voice: raw.Voice}, nil
}

// AudioDownloader fetches word pronunciations into a scratch directory.
type AudioDownloader struct {
	httpClient  *http.Client
	concurrency int
	logger      *zap.Logger
}

func NewAudioDownloader(httpClient *http.Client, concurrency int, logger *zap.Logger) *AudioDownloader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.Timeouts.AudioDownload}
	}
	concurrency = util.Max(concurrency, 1)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AudioDownloader{
		httpClient:  httpClient,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Download writes one file per word to dir, named by its 1-based position in
// words. Failures are logged and skipped; the returned artifacts cover only
// the words that were written, in position order.
func (d *AudioDownloader) Download(ctx context.Context, voice VoiceTemplate, words []domain.VocabularyEntry, dir string) []domain.AudioArtifact {
	if len(words) == 0 {
		return []domain.AudioArtifact{}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		d.logger.Error("Failed to create word audio directory", zap.String("dir", dir), zap.Error(err))
		return []domain.AudioArtifact{}
	}

	p := pool.New().WithMaxGoroutines(d.concurrency)

	// one slot per word; each task writes only its own index
	results := make([]*domain.AudioArtifact, len(words))

	for idx, word := range words {
		if word.IsPlaceholder() {
			continue
		}
		idx, word := idx, word
		p.Go(func() {
			path := filepath.Join(dir, strconv.Itoa(idx+1)+".mp3")
			if err := d.fetch(ctx, voice.URL(word.WordString), path); err != nil {
				d.logger.Warn("Word audio download failed",
					zap.String("word", word.WordString),
					zap.Int("index", idx+1),
					zap.Error(err),
				)
				return
			}
			results[idx] = &domain.AudioArtifact{
				Kind:  domain.ArtifactWord,
				Index: idx + 1,
				Path:  path,
				Text:  word.WordString,
			}
		})
	}

	p.Wait()

	artifacts := make([]domain.AudioArtifact, 0, len(words))
	for _, result := range results {
		if result != nil {
			artifacts = append(artifacts, *result)
		}
	}

	d.logger.Info("Word audio downloaded",
		zap.Int("requested", len(words)),
		zap.Int("written", len(artifacts)),
	)

	return artifacts
}

func (d *AudioDownloader) fetch(ctx context.Context, audioURL, path string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.Timeouts.AudioDownload)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", constants.DownloadConfig.UserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return errors.NewAPIError("audio request failed", 0, map[string]any{"url": audioURL}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewAPIError(fmt.Sprintf("audio download error: %s", resp.Status), resp.StatusCode, map[string]any{
			"url": audioURL,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}
