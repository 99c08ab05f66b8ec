package usecase

import (
	"context"

	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/utils/async"
	"github.com/storyspark-lab/storyspark/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// DocumentPublisher delivers a finished story document to an external
// destination (Slack channel, Notion page, storage bucket).
type DocumentPublisher interface {
	Name() string
	Publish(ctx context.Context, sessionID model.SessionID, doc *model.Document) error
}

// publishDocument fans the document out to all configured publishers in
// the background. Failures are logged, never surfaced: the assembled
// document is already durable.
func (uc *WorkflowUseCase) publishDocument(ctx context.Context, sessionID model.SessionID, doc *model.Document) {
	if len(uc.publishers) == 0 {
		return
	}

	publishers := uc.publishers
	async.Dispatch(ctx, func(ctx context.Context) error {
		var eg errgroup.Group
		for _, p := range publishers {
			eg.Go(func() error {
				if err := p.Publish(ctx, sessionID, doc); err != nil {
					logging.From(ctx).Error("failed to publish document",
						"publisher", p.Name(),
						"session_id", sessionID,
						"error", err)
				}
				return nil
			})
		}
		return eg.Wait()
	})
}
