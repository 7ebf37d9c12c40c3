package domain

// GeneratedContent is the study material produced from one word selection.
type GeneratedContent struct {
	Story               string
	StoryTranslation    string
	Dialogue            string
	DialogueTranslation string
}

type ArtifactKind string

const (
	ArtifactWord     ArtifactKind = "word"
	ArtifactStory    ArtifactKind = "story"
	ArtifactDialogue ArtifactKind = "dialogue"
)

// AudioArtifact is a file written to the scratch directory during a run.
type AudioArtifact struct {
	Kind    ArtifactKind
	Index   int
	Path    string
	Speaker Speaker
	Text    string
}
