package generator

import (
	"github.com/kapu/lingo-digest-bot/pkg/errors"
	"google.golang.org/genai"
)

// Message is one entry of a conversational backend's response, tagged with its
// author and, for non-answer content, a type.
type Message struct {
	Author string
	Type   string
	Text   string
}

const (
	AuthorAssistant = "model"

	MessageTypeThought      = "thought"
	MessageTypeFunctionCall = "function_call"
	MessageTypeNonText      = "non_text"
)

// SelectReply returns the first message written by the assistant that carries
// no type tag.
func SelectReply(messages []Message) (Message, error) {
	for _, msg := range messages {
		if msg.Author == AuthorAssistant && msg.Type == "" {
			return msg, nil
		}
	}
	return Message{}, errors.ErrNoReplyFound
}

// messagesFromResponse flattens every candidate part into a tagged Message.
func messagesFromResponse(resp *genai.GenerateContentResponse) []Message {
	if resp == nil {
		return nil
	}

	messages := make([]Message, 0)
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		author := candidate.Content.Role
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			msg := Message{Author: author, Text: part.Text}
			switch {
			case part.Thought:
				msg.Type = MessageTypeThought
			case part.FunctionCall != nil:
				msg.Type = MessageTypeFunctionCall
			case part.Text == "":
				msg.Type = MessageTypeNonText
			}
			messages = append(messages, msg)
		}
	}
	return messages
}
