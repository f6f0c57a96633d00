package llm

import (
	"context"
	"errors"
	"strings"
)

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}

var ErrEmptyReply = errors.New("model returned an empty reply")

// Prompter sends a single prompt string as one user message.
type Prompter struct {
	Client Client
}

func NewPrompter(c Client) *Prompter { return &Prompter{Client: c} }

func (p *Prompter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.Client.Generate(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyReply
	}
	return resp.Content, nil
}
