package usecase

import (
	"github.com/m-mizutani/gollem"
	"github.com/storyspark-lab/storyspark/pkg/domain/interfaces"
	"github.com/storyspark-lab/storyspark/pkg/domain/model/config"
	"github.com/storyspark-lab/storyspark/pkg/service/scenegen"
)

type UseCases struct {
	repo       interfaces.Repository
	storyCfg   *config.StoryConfig
	publishers []DocumentPublisher

	Character *CharacterUseCase
	Workflow  *WorkflowUseCase
}

type Option func(*UseCases)

func WithStoryConfig(cfg *config.StoryConfig) Option {
	return func(uc *UseCases) {
		uc.storyCfg = cfg
	}
}

func WithPublishers(publishers ...DocumentPublisher) Option {
	return func(uc *UseCases) {
		uc.publishers = append(uc.publishers, publishers...)
	}
}

func New(repo interfaces.Repository, llmClient gollem.LLMClient, sceneSvc scenegen.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		storyCfg: config.DefaultStoryConfig(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Character = NewCharacterUseCase(repo, llmClient)
	uc.Workflow = NewWorkflowUseCase(repo, uc.Character, sceneSvc, uc.storyCfg, uc.publishers)

	return uc
}
