package prompt

type StoryPromptData struct {
	Language string
	Words    []string
	MaxWords int
}

type DialoguePromptData struct {
	Language     string
	Words        []string
	MalePrefix   string
	FemalePrefix string
}

type TranslatePromptData struct {
	Text           string
	TargetLanguage string
	KeepPrefixes   bool
}
