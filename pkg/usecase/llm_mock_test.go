package usecase_test

import (
	"context"

	"github.com/m-mizutani/gollem"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{"The river rose over the banks and the village woke."},
	}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing. Embeddings are
// deterministic per input text via embedFn.
type mockLLMClient struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
	embedFn           func(text string) []float64
	embedCalls        int
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &mockLLMSession{generateContentFn: c.generateContentFn}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	c.embedCalls++

	result := make([][]float64, 0, len(input))
	for _, text := range input {
		if c.embedFn != nil {
			result = append(result, c.embedFn(text))
			continue
		}
		// Cheap deterministic vector so equal texts embed equally
		vec := make([]float64, 3)
		for i, r := range text {
			vec[i%3] += float64(r)
		}
		result = append(result, vec)
	}
	return result, nil
}

func inputText(inputs []gollem.Input) string {
	var out string
	for _, in := range inputs {
		if text, ok := in.(gollem.Text); ok {
			out += string(text)
		}
	}
	return out
}
