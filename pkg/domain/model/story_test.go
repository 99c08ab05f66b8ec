package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/domain/types"
)

func TestStorySessionClone(t *testing.T) {
	session := &model.StorySession{
		ID:     model.NewSessionID(),
		Prompt: model.StoryPrompt{Title: "The Flood", Premise: "village in danger"},
		Scenes: []*model.Scene{
			{Index: 1, Text: "scene one", Status: types.SceneStatusAccepted, CharacterNames: []string{"Bheem"}},
			{Index: 2, Text: "scene two", Status: types.SceneStatusPending},
		},
		CurrentIndex: 2,
		Phase:        types.SessionPhaseAwaitingDecision,
	}

	copied := session.Clone()
	copied.Scenes[0].Text = "mutated"
	copied.Scenes[0].CharacterNames[0] = "Someone"
	copied.CurrentIndex = 9

	gt.Value(t, session.Scenes[0].Text).Equal("scene one")
	gt.Value(t, session.Scenes[0].CharacterNames[0]).Equal("Bheem")
	gt.Value(t, session.CurrentIndex).Equal(2)
}

func TestStorySessionPendingScene(t *testing.T) {
	t.Run("returns the pending scene at current index", func(t *testing.T) {
		session := &model.StorySession{
			Scenes: []*model.Scene{
				{Index: 1, Status: types.SceneStatusAccepted},
				{Index: 2, Status: types.SceneStatusPending},
			},
			CurrentIndex: 2,
		}
		pending := session.PendingScene()
		gt.Value(t, pending).NotNil()
		gt.Value(t, pending.Index).Equal(2)
	})

	t.Run("nil when current scene is accepted", func(t *testing.T) {
		session := &model.StorySession{
			Scenes:       []*model.Scene{{Index: 1, Status: types.SceneStatusAccepted}},
			CurrentIndex: 1,
		}
		gt.Value(t, session.PendingScene()).Nil()
	})

	t.Run("nil when scene does not exist yet", func(t *testing.T) {
		session := &model.StorySession{CurrentIndex: 1}
		gt.Value(t, session.PendingScene()).Nil()
	})
}

func TestAssembleDocument(t *testing.T) {
	accepted := func(index int, text string) *model.Scene {
		return &model.Scene{Index: index, Text: text, Status: types.SceneStatusAccepted}
	}

	t.Run("joins scenes in order with title prepended", func(t *testing.T) {
		session := &model.StorySession{
			ID:     model.NewSessionID(),
			Prompt: model.StoryPrompt{Title: "The Flood", Premise: "village in danger"},
			Scenes: []*model.Scene{
				accepted(1, "The river rose."),
				accepted(2, "The village held."),
			},
		}

		doc, err := model.AssembleDocument(session)
		gt.NoError(t, err).Required()
		gt.Value(t, doc.SceneCount).Equal(2)
		gt.Value(t, doc.Content).Equal(
			"The Flood\n\nScene 1\n\nThe river rose.\n\n---\n\nScene 2\n\nThe village held.")
	})

	t.Run("no title means no title line", func(t *testing.T) {
		session := &model.StorySession{
			Scenes: []*model.Scene{accepted(1, "Once upon a time.")},
		}

		doc, err := model.AssembleDocument(session)
		gt.NoError(t, err).Required()
		gt.Value(t, doc.Content).Equal("Scene 1\n\nOnce upon a time.")
	})

	t.Run("idempotent on an unmodified session", func(t *testing.T) {
		session := &model.StorySession{
			Prompt: model.StoryPrompt{Title: "Twice"},
			Scenes: []*model.Scene{accepted(1, "a"), accepted(2, "b")},
		}

		first, err := model.AssembleDocument(session)
		gt.NoError(t, err).Required()
		second, err := model.AssembleDocument(session)
		gt.NoError(t, err).Required()
		gt.Value(t, first.Content).Equal(second.Content)
	})

	t.Run("fails while a scene is pending", func(t *testing.T) {
		session := &model.StorySession{
			Scenes: []*model.Scene{
				accepted(1, "a"),
				{Index: 2, Text: "b", Status: types.SceneStatusPending},
			},
		}

		_, err := model.AssembleDocument(session)
		gt.Error(t, err).Is(model.ErrStoryIncomplete)
	})

	t.Run("fails on empty session", func(t *testing.T) {
		_, err := model.AssembleDocument(&model.StorySession{})
		gt.Error(t, err).Is(model.ErrStoryIncomplete)
	})
}
