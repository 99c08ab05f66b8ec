package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/types"
)

// ErrStoryIncomplete is returned when assembly is attempted while any
// scene is not yet accepted
var ErrStoryIncomplete = goerr.New("story has scenes not yet accepted")

// sceneSeparator sits between rendered scenes in the final document
const sceneSeparator = "\n\n---\n\n"

// Document is the exportable result of a finished story session
type Document struct {
	Title       string
	Content     string
	SceneCount  int
	AssembledAt time.Time
}

// AssembleDocument concatenates the accepted scenes of a session into the
// final document. It is a pure function of the session state: the same
// session always yields the same Content. Every scene must be accepted,
// otherwise ErrStoryIncomplete is returned.
func AssembleDocument(session *StorySession) (*Document, error) {
	if len(session.Scenes) == 0 {
		return nil, goerr.Wrap(ErrStoryIncomplete, "session has no scenes",
			goerr.V("session_id", session.ID))
	}

	parts := make([]string, 0, len(session.Scenes))
	for _, scene := range session.Scenes {
		if scene.Status != types.SceneStatusAccepted {
			return nil, goerr.Wrap(ErrStoryIncomplete, "scene is not accepted",
				goerr.V("session_id", session.ID),
				goerr.V("scene_index", scene.Index),
				goerr.V("scene_status", scene.Status))
		}
		parts = append(parts, fmt.Sprintf("Scene %d\n\n%s", scene.Index, scene.Text))
	}

	content := strings.Join(parts, sceneSeparator)
	if session.Prompt.Title != "" {
		content = session.Prompt.Title + "\n\n" + content
	}

	return &Document{
		Title:       session.Prompt.Title,
		Content:     content,
		SceneCount:  len(parts),
		AssembledAt: time.Now().UTC(),
	}, nil
}
