package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
)

// Service posts finished story documents to a Slack channel
type Service interface {
	PostDocument(ctx context.Context, channelID string, doc *model.Document) error
}

// client implements Service interface
type client struct {
	api *slack.Client
}

// New creates a new Slack service with the provided bot token
func New(token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	return &client{
		api: slack.New(token),
	}, nil
}

// PostDocument posts the assembled story to the given channel
func (c *client) PostDocument(ctx context.Context, channelID string, doc *model.Document) error {
	if channelID == "" {
		return goerr.New("Slack channel ID is required")
	}

	header := fmt.Sprintf("Story finished (%d scenes)", doc.SceneCount)
	if doc.Title != "" {
		header = fmt.Sprintf("Story finished: %s (%d scenes)", doc.Title, doc.SceneCount)
	}

	_, _, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(header, false),
		slack.MsgOptionAttachments(slack.Attachment{
			Text: doc.Content,
		}),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post document to Slack", goerr.V("channelID", channelID))
	}

	return nil
}
