package narration

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"

	"github.com/kapu/lingo-digest-bot/internal/constants"
)

type synthClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Synthesizer turns text into MP3 audio with Amazon Polly. The AWS client is
// created on first use.
type Synthesizer struct {
	mu     sync.Mutex
	client synthClient
	region string
	engine pollytypes.Engine
}

func NewSynthesizer(region, engine string) *Synthesizer {
	return newSynthesizerWithClient(region, engine, nil)
}

func newSynthesizerWithClient(region, engine string, client synthClient) *Synthesizer {
	if strings.TrimSpace(region) == "" {
		region = "us-east-1"
	}
	e := pollytypes.EngineStandard
	if strings.EqualFold(engine, "neural") {
		e = pollytypes.EngineNeural
	}
	return &Synthesizer{client: client, region: region, engine: e}
}

// Synthesize returns the MP3 bytes for text spoken by voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	client, err := s.resolveClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.Timeouts.Synthesis)
	defer cancel()

	output, err := client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:       s.engine,
		OutputFormat: pollytypes.OutputFormatMp3,
		Text:         aws.String(text),
		TextType:     pollytypes.TextTypeText,
		VoiceId:      pollytypes.VoiceId(voice),
	})
	if err != nil {
		return nil, normalizePollyError(err)
	}
	if output == nil || output.AudioStream == nil {
		return nil, fmt.Errorf("polly returned no audio for voice %s", voice)
	}
	defer output.AudioStream.Close()

	audio, err := io.ReadAll(output.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("read polly audio stream: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("polly returned empty audio for voice %s", voice)
	}
	return audio, nil
}

func normalizePollyError(err error) error {
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		return fmt.Errorf("polly %s: %s: %w", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return fmt.Errorf("polly request failed: %w", err)
}

func (s *Synthesizer) resolveClient(ctx context.Context) (synthClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s.region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	s.client = polly.NewFromConfig(awsCfg)
	return s.client, nil
}
