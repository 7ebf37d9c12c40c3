package narration

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap/zaptest"

	"github.com/kapu/lingo-digest-bot/internal/domain"
)

type fakePollyClient struct {
	inputs []*polly.SynthesizeSpeechInput
	err    error
}

func (f *fakePollyClient) SynthesizeSpeech(_ context.Context, params *polly.SynthesizeSpeechInput, _ ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &polly.SynthesizeSpeechOutput{
		AudioStream: io.NopCloser(bytes.NewReader([]byte("mp3:" + aws.ToString(params.Text)))),
	}, nil
}

type fakeAPIError struct {
	code string
}

func (e fakeAPIError) Error() string                 { return e.code }
func (e fakeAPIError) ErrorCode() string             { return e.code }
func (e fakeAPIError) ErrorMessage() string          { return "rejected" }
func (e fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

type recordingSynth struct {
	calls []synthCall
}

type synthCall struct {
	text  string
	voice string
}

func (r *recordingSynth) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	r.calls = append(r.calls, synthCall{text: text, voice: voice})
	return []byte(voice + ":" + text), nil
}

var testVoices = VoiceTable{
	"es": {Male: []string{"Enrique", "Sergio"}, Female: []string{"Lucia", "Lupe"}},
}

func TestPickVoice(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	male, err := testVoices.PickVoice("es", domain.SpeakerMale, rnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if male != "Enrique" && male != "Sergio" {
		t.Fatalf("expected a male spanish voice, got %s", male)
	}

	if _, err := testVoices.PickVoice("tlh", domain.SpeakerMale, rnd); err == nil {
		t.Fatalf("expected unknown language to fail")
	}
}

func TestDefaultVoicesHaveBothSpeakers(t *testing.T) {
	for lang, pair := range DefaultVoices {
		if len(pair.Male) == 0 || len(pair.Female) == 0 {
			t.Fatalf("language %s is missing a speaker", lang)
		}
	}
}

func TestSynthesizeUsesMp3AndEngine(t *testing.T) {
	client := &fakePollyClient{}
	synth := newSynthesizerWithClient("eu-west-1", "neural", client)

	audio, err := synth.Synthesize(context.Background(), "hola", "Lucia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "mp3:hola" {
		t.Fatalf("unexpected audio %q", audio)
	}

	in := client.inputs[0]
	if in.OutputFormat != pollytypes.OutputFormatMp3 || in.Engine != pollytypes.EngineNeural || in.VoiceId != pollytypes.VoiceId("Lucia") {
		t.Fatalf("unexpected request: %+v", in)
	}

	standard := newSynthesizerWithClient("", "standard", client)
	if _, err := standard.Synthesize(context.Background(), "adios", "Enrique"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.inputs[1].Engine != pollytypes.EngineStandard {
		t.Fatalf("expected standard engine, got %s", client.inputs[1].Engine)
	}
}

func TestSynthesizeWrapsAPIErrorCode(t *testing.T) {
	synth := newSynthesizerWithClient("us-east-1", "neural", &fakePollyClient{err: fakeAPIError{code: "TextLengthExceededException"}})

	_, err := synth.Synthesize(context.Background(), "hola", "Lucia")
	if err == nil || !strings.Contains(err.Error(), "TextLengthExceededException") {
		t.Fatalf("expected error code in message, got %v", err)
	}
	var apiErr smithy.APIError
	if !stderrors.As(err, &apiErr) {
		t.Fatalf("expected smithy APIError in chain")
	}
}

func TestNarrateDialogueRoutesSpeakers(t *testing.T) {
	dir := t.TempDir()
	synth := &recordingSynth{}
	narrator := NewNarrator(synth, testVoices, rand.New(rand.NewSource(7)), zaptest.NewLogger(t))

	dialogue := "M: Hola, ¿cómo estás?\nNarrator: (they sit down)\nF: Muy bien.\nM: Me alegro."
	artifacts, err := narrator.NarrateDialogue(context.Background(), "es", dialogue, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artifacts) != 3 || len(synth.calls) != 3 {
		t.Fatalf("expected 3 narrated lines, got %d artifacts and %d calls", len(artifacts), len(synth.calls))
	}

	maleVoice := synth.calls[0].voice
	femaleVoice := synth.calls[1].voice
	if maleVoice != "Enrique" && maleVoice != "Sergio" {
		t.Fatalf("male line spoken by %s", maleVoice)
	}
	if femaleVoice != "Lucia" && femaleVoice != "Lupe" {
		t.Fatalf("female line spoken by %s", femaleVoice)
	}
	if synth.calls[2].voice != maleVoice {
		t.Fatalf("expected one male voice for the whole dialogue, got %s then %s", maleVoice, synth.calls[2].voice)
	}
	if synth.calls[1].text != "Muy bien." {
		t.Fatalf("expected speaker tag stripped, got %q", synth.calls[1].text)
	}

	for i, artifact := range artifacts {
		want := filepath.Join(dir, "dialogue", []string{"1.mp3", "2.mp3", "3.mp3"}[i])
		if artifact.Path != want {
			t.Fatalf("artifact %d path = %s, want %s", i, artifact.Path, want)
		}
		if _, err := os.Stat(artifact.Path); err != nil {
			t.Fatalf("expected file written: %v", err)
		}
	}
}

func TestNarrateDialogueWithoutTaggedLines(t *testing.T) {
	narrator := NewNarrator(&recordingSynth{}, testVoices, rand.New(rand.NewSource(1)), zaptest.NewLogger(t))
	if _, err := narrator.NarrateDialogue(context.Background(), "es", "just prose", t.TempDir()); err == nil {
		t.Fatalf("expected error for untagged dialogue")
	}
}

func TestNarrateStoryWritesFile(t *testing.T) {
	dir := t.TempDir()
	synth := &recordingSynth{}
	narrator := NewNarrator(synth, testVoices, rand.New(rand.NewSource(3)), zaptest.NewLogger(t))

	artifact, err := narrator.NarrateStory(context.Background(), "es", "Había una vez.", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Path != filepath.Join(dir, "story.mp3") {
		t.Fatalf("unexpected path %s", artifact.Path)
	}
	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		t.Fatalf("read story audio: %v", err)
	}
	if !strings.HasSuffix(string(data), ":Había una vez.") {
		t.Fatalf("unexpected audio contents %q", data)
	}
}
