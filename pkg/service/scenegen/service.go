package scenegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/utils/logging"
)

// ErrGenerationFailed is returned when the LLM fails to produce usable
// scene text within the retry budget
var ErrGenerationFailed = goerr.New("scene generation failed")

// defaultRetries is how many times a failed generation is retried before
// giving up
const defaultRetries = 1

// client implements Service interface
type client struct {
	llmClient gollem.LLMClient
	retries   int
}

// Option is a functional option for client configuration
type Option func(*client)

// WithRetries overrides the retry budget for failed generations
func WithRetries(n int) Option {
	return func(c *client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// New creates a new scene generation service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
		retries:   defaultRetries,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) Generate(ctx context.Context, input Input) (string, error) {
	if input.SceneNumber < 1 {
		return "", goerr.New("scene number must be positive", goerr.V("scene_number", input.SceneNumber))
	}
	if input.Instruction != "" && input.CurrentText == "" {
		return "", goerr.New("rewrite requires current scene text")
	}

	var prompt string
	if input.Instruction != "" {
		prompt = buildRewritePrompt(input.Instruction, input.CurrentText)
	} else {
		prompt = buildScenePrompt(input)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			logging.From(ctx).Warn("retrying scene generation",
				"scene_number", input.SceneNumber,
				"attempt", attempt,
				"error", lastErr)
		}

		text, err := c.generateOnce(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		return text, nil
	}

	return "", goerr.Wrap(ErrGenerationFailed, "retry budget exhausted",
		goerr.V("scene_number", input.SceneNumber),
		goerr.V("attempts", c.retries+1),
		goerr.V("cause", lastErr))
}

func (c *client) generateOnce(ctx context.Context, prompt string) (string, error) {
	session, err := c.llmClient.NewSession(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}

	if len(resp.Texts) == 0 {
		return "", goerr.New("LLM returned no text")
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	if text == "" {
		return "", goerr.New("LLM returned empty scene text")
	}

	return text, nil
}

// buildScenePrompt creates the prompt for a fresh scene
func buildScenePrompt(input Input) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Write Scene %d in simple English (120–180 words).\n\n", input.SceneNumber)
	fmt.Fprintf(&sb, "Characters: %s\n\n", formatCharacters(input.Characters))
	fmt.Fprintf(&sb, "Story: %s\n\n", input.Prompt.Premise)

	if len(input.PriorScenes) > 0 {
		sb.WriteString("Previous scenes:\n\n")
		sb.WriteString(strings.Join(input.PriorScenes, "\n\n"))
		sb.WriteString("\n\n")
	}

	sb.WriteString("Use simple clear sentences.\n")
	return sb.String()
}

// buildRewritePrompt creates the prompt for rewriting a scene with
// reviewer changes
func buildRewritePrompt(instruction, currentText string) string {
	return fmt.Sprintf(`Rewrite this scene with these changes:
%s

Original:
%s

Rewritten scene:
`, instruction, currentText)
}

// formatCharacters renders the retrieved cast as a bullet list. With no
// cast the model is told to invent characters.
func formatCharacters(characters []*model.Character) string {
	if len(characters) == 0 {
		return "Create new characters as needed"
	}

	lines := make([]string, 0, len(characters))
	for _, c := range characters {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.Name, c.Description))
	}
	return strings.Join(lines, "\n")
}
