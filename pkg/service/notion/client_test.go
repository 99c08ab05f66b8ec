package notion_test

import (
	"testing"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/gt"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/service/notion"
)

func TestNew_RequiresToken(t *testing.T) {
	_, err := notion.New("")
	gt.Value(t, err).NotNil()
}

func TestDocumentBlocks(t *testing.T) {
	doc := &model.Document{
		Title:      "The Flood",
		Content:    "The Flood\n\nScene 1\n\nThe river rose.\n\n---\n\nScene 2\n\nThe village held.",
		SceneCount: 2,
	}

	blocks := notion.DocumentBlocks(doc)
	gt.Array(t, blocks).Length(2)

	first, ok := blocks[0].(*notionapi.ParagraphBlock)
	gt.Bool(t, ok).True()
	gt.String(t, first.Paragraph.RichText[0].Text.Content).Contains("Scene 1")

	second, ok := blocks[1].(*notionapi.ParagraphBlock)
	gt.Bool(t, ok).True()
	gt.String(t, second.Paragraph.RichText[0].Text.Content).Contains("Scene 2")
}
