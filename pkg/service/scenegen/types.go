package scenegen

import (
	"context"

	"github.com/storyspark-lab/storyspark/pkg/domain/model"
)

// Service generates narrative scene text from a story premise and a
// retrieved cast
type Service interface {
	// Generate produces the text for one scene. When Instruction is set
	// the current scene text is rewritten instead of generated fresh.
	Generate(ctx context.Context, input Input) (string, error)
}

// Input represents the input for scene generation
type Input struct {
	Prompt      model.StoryPrompt
	SceneNumber int
	Characters  []*model.Character
	// PriorScenes holds the accepted scene texts before this one, in
	// index order, so the model keeps continuity.
	PriorScenes []string
	// Instruction holds reviewer change requests for a rewrite.
	// CurrentText is the scene being rewritten; required with Instruction.
	Instruction string
	CurrentText string
}
