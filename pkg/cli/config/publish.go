package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/service/notion"
	"github.com/storyspark-lab/storyspark/pkg/service/slack"
	"github.com/storyspark-lab/storyspark/pkg/service/storage"
	"github.com/storyspark-lab/storyspark/pkg/usecase"
	"github.com/storyspark-lab/storyspark/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Publish holds CLI flags for the document publishing destinations.
// Every destination is optional; unset ones are skipped.
type Publish struct {
	slackBotToken    string
	slackChannel     string
	notionAPIToken   string
	notionParentPage string
	storageBucket    string
}

// Flags returns CLI flags for publishing configuration
func (p *Publish) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for posting finished stories)",
			Category:    "Publishing",
			Sources:     cli.EnvVars("STORYSPARK_SLACK_BOT_TOKEN"),
			Destination: &p.slackBotToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID to post finished stories to",
			Category:    "Publishing",
			Sources:     cli.EnvVars("STORYSPARK_SLACK_CHANNEL"),
			Destination: &p.slackChannel,
		},
		&cli.StringFlag{
			Name:        "notion-api-token",
			Usage:       "Notion API token for exporting finished stories",
			Category:    "Publishing",
			Sources:     cli.EnvVars("STORYSPARK_NOTION_API_TOKEN"),
			Destination: &p.notionAPIToken,
		},
		&cli.StringFlag{
			Name:        "notion-parent-page",
			Usage:       "Notion parent page ID for exported stories",
			Category:    "Publishing",
			Sources:     cli.EnvVars("STORYSPARK_NOTION_PARENT_PAGE"),
			Destination: &p.notionParentPage,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for archiving finished stories",
			Category:    "Publishing",
			Sources:     cli.EnvVars("STORYSPARK_STORAGE_BUCKET"),
			Destination: &p.storageBucket,
		},
	}
}

// LogValue returns log attributes for the publishing configuration
func (p Publish) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("slack-bot-token.len", len(p.slackBotToken)),
		slog.String("slack-channel", p.slackChannel),
		slog.Int("notion-api-token.len", len(p.notionAPIToken)),
		slog.String("notion-parent-page", p.notionParentPage),
		slog.String("storage-bucket", p.storageBucket),
	)
}

// Configure builds the publishers for the configured destinations. The
// returned closer releases clients that hold connections.
func (p *Publish) Configure(ctx context.Context) ([]usecase.DocumentPublisher, func(), error) {
	var publishers []usecase.DocumentPublisher
	closer := func() {}

	if p.slackBotToken != "" {
		if p.slackChannel == "" {
			return nil, nil, goerr.New("slack-channel is required when slack-bot-token is set")
		}
		svc, err := slack.New(p.slackBotToken)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize slack service")
		}
		publishers = append(publishers, &slackPublisher{svc: svc, channelID: p.slackChannel})
		logging.Default().Info("Slack publishing enabled", "channel", p.slackChannel)
	}

	if p.notionAPIToken != "" {
		if p.notionParentPage == "" {
			return nil, nil, goerr.New("notion-parent-page is required when notion-api-token is set")
		}
		svc, err := notion.New(p.notionAPIToken)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize notion service")
		}
		publishers = append(publishers, &notionPublisher{svc: svc, parentPageID: p.notionParentPage})
		logging.Default().Info("Notion publishing enabled", "parent_page", p.notionParentPage)
	}

	if p.storageBucket != "" {
		svc, err := storage.New(ctx, p.storageBucket)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize storage service")
		}
		publishers = append(publishers, &storagePublisher{svc: svc})
		closer = func() {
			if err := svc.Close(); err != nil {
				logging.Default().Error("failed to close storage service", "error", err.Error())
			}
		}
		logging.Default().Info("Cloud Storage publishing enabled", "bucket", p.storageBucket)
	}

	return publishers, closer, nil
}

type slackPublisher struct {
	svc       slack.Service
	channelID string
}

func (p *slackPublisher) Name() string {
	return "slack"
}

func (p *slackPublisher) Publish(ctx context.Context, sessionID model.SessionID, doc *model.Document) error {
	return p.svc.PostDocument(ctx, p.channelID, doc)
}

type notionPublisher struct {
	svc          notion.Service
	parentPageID string
}

func (p *notionPublisher) Name() string {
	return "notion"
}

func (p *notionPublisher) Publish(ctx context.Context, sessionID model.SessionID, doc *model.Document) error {
	url, err := p.svc.CreateDocumentPage(ctx, p.parentPageID, doc)
	if err != nil {
		return err
	}
	logging.From(ctx).Info("exported story to Notion", "session_id", sessionID, "url", url)
	return nil
}

type storagePublisher struct {
	svc storage.Service
}

func (p *storagePublisher) Name() string {
	return "storage"
}

func (p *storagePublisher) Publish(ctx context.Context, sessionID model.SessionID, doc *model.Document) error {
	path, err := p.svc.SaveDocument(ctx, sessionID, doc)
	if err != nil {
		return err
	}
	logging.From(ctx).Info("archived story to Cloud Storage", "session_id", sessionID, "object", path)
	return nil
}
