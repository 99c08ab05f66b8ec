package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/usecase"
	"github.com/storyspark-lab/storyspark/pkg/utils/errutil"
)

type characterResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCharacterResponse(c *model.Character) characterResponse {
	return characterResponse{
		ID:          string(c.ID),
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCharacterResponses(characters []*model.Character) []characterResponse {
	out := make([]characterResponse, len(characters))
	for i, c := range characters {
		out[i] = toCharacterResponse(c)
	}
	return out
}

type sceneResponse struct {
	Index          int      `json:"index"`
	Text           string   `json:"text"`
	Status         string   `json:"status"`
	Instruction    string   `json:"instruction,omitempty"`
	CharacterNames []string `json:"character_names,omitempty"`
}

type sessionResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title,omitempty"`
	Premise      string          `json:"premise"`
	Phase        string          `json:"phase"`
	CurrentIndex int             `json:"current_index"`
	Scenes       []sceneResponse `json:"scenes"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toSessionResponse(session *model.StorySession) sessionResponse {
	scenes := make([]sceneResponse, len(session.Scenes))
	for i, scene := range session.Scenes {
		scenes[i] = sceneResponse{
			Index:          scene.Index,
			Text:           scene.Text,
			Status:         scene.Status.String(),
			Instruction:    scene.Instruction,
			CharacterNames: scene.CharacterNames,
		}
	}

	return sessionResponse{
		ID:           string(session.ID),
		Title:        session.Prompt.Title,
		Premise:      session.Prompt.Premise,
		Phase:        session.Phase.String(),
		CurrentIndex: session.CurrentIndex,
		Scenes:       scenes,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
}

type documentResponse struct {
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"content"`
	SceneCount  int       `json:"scene_count"`
	AssembledAt time.Time `json:"assembled_at"`
}

func toDocumentResponse(doc *model.Document) documentResponse {
	return documentResponse{
		Title:       doc.Title,
		Content:     doc.Content,
		SceneCount:  doc.SceneCount,
		AssembledAt: doc.AssembledAt,
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// statusForError maps use case sentinels to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidArgument), errors.Is(err, usecase.ErrInvalidDecision):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrCharacterNotFound), errors.Is(err, usecase.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrStoryIncomplete):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusForError(err))
}
