package constants

import "time"

// DefaultWordCount is used when the word count argument is missing or not a
// number.
const DefaultWordCount = 20

// PlaceholderSentinel is the normalized form Duolingo uses for non-word
// vocabulary entries.
const PlaceholderSentinel = "<*sf>"

var APIConfig = struct {
	DuolingoBaseURL string
	DuolingoTTSURL  string
	TelegramBaseURL string
	IrisBaseURL     string
}{
	DuolingoBaseURL: "https://www.duolingo.com",
	DuolingoTTSURL:  "https://d1vq87e9lcf771.cloudfront.net",
	TelegramBaseURL: "https://api.telegram.org",
	IrisBaseURL:     "http://localhost:3000",
}

var Timeouts = struct {
	LearningService time.Duration
	AudioDownload   time.Duration
	Generation      time.Duration
	Synthesis       time.Duration
	Delivery        time.Duration
	Run             time.Duration
}{
	LearningService: 15 * time.Second,
	AudioDownload:   20 * time.Second,
	Generation:      90 * time.Second,
	Synthesis:       30 * time.Second,
	Delivery:        10 * time.Second,
	Run:             15 * time.Minute,
}

var DownloadConfig = struct {
	Concurrency int
	UserAgent   string
}{
	Concurrency: 5,
	UserAgent:   "Mozilla/5.0 (compatible; LingoDigestBot/1.0)",
}

var GeneratorConfig = struct {
	DefaultOpenAIModel string
	DefaultGeminiModel string
	StoryMaxWords      int
	TranslateLanguage  string
}{
	DefaultOpenAIModel: "gpt-4o-mini",
	DefaultGeminiModel: "gemini-2.5-flash",
	StoryMaxWords:      300,
	TranslateLanguage:  "Chinese",
}

// Dialogue speaker tags. Both are exactly two characters.
var SpeakerPrefix = struct {
	Male   string
	Female string
}{
	Male:   "M:",
	Female: "F:",
}

var StringLimits = struct {
	LogPreview     int
	TelegramText   int
	ErrorBodyBytes int
}{
	LogPreview:     80,
	TelegramText:   4096,
	ErrorBodyBytes: 512,
}
