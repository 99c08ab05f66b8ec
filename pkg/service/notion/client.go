package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
)

// Service exports finished story documents as Notion pages
type Service interface {
	// CreateDocumentPage creates a page under the given parent page and
	// returns its URL.
	CreateDocumentPage(ctx context.Context, parentPageID string, doc *model.Document) (string, error)
}

// client implements Service interface
type client struct {
	api *notionapi.Client
}

// New creates a new Notion service with the provided API token
func New(token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("Notion API token is required")
	}

	return &client{
		api: notionapi.NewClient(
			notionapi.Token(token),
			notionapi.WithRetry(3), // Retry on rate limit (HTTP 429)
		),
	}, nil
}

func (c *client) CreateDocumentPage(ctx context.Context, parentPageID string, doc *model.Document) (string, error) {
	if parentPageID == "" {
		return "", goerr.New("Notion parent page ID is required")
	}

	title := doc.Title
	if title == "" {
		title = "Untitled story"
	}

	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentPageID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Title: []notionapi.RichText{
					{Text: &notionapi.Text{Content: title}},
				},
			},
		},
		Children: documentBlocks(doc),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create Notion page",
			goerr.V("parentPageID", parentPageID), goerr.V("title", title))
	}

	return page.URL, nil
}

// documentBlocks converts the document content into paragraph blocks,
// one per content section.
func documentBlocks(doc *model.Document) []notionapi.Block {
	sections := strings.Split(doc.Content, "\n\n---\n\n")

	blocks := make([]notionapi.Block, 0, len(sections))
	for _, section := range sections {
		blocks = append(blocks, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{
				RichText: []notionapi.RichText{
					{Text: &notionapi.Text{Content: section}},
				},
			},
		})
	}

	return blocks
}
