package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/domain/types"
	"github.com/storyspark-lab/storyspark/pkg/usecase"
	"github.com/storyspark-lab/storyspark/pkg/utils/errutil"
	"github.com/storyspark-lab/storyspark/pkg/utils/safe"
)

type createSessionRequest struct {
	Title   string `json:"title"`
	Premise string `json:"premise"`
}

type createSessionResponse struct {
	Session sessionResponse `json:"session"`
	Token   string          `json:"token,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidArgument, "invalid request body"))
		return
	}

	session, startErr := s.uc.Workflow.Start(r.Context(), req.Title, req.Premise)
	if startErr != nil && session == nil {
		handleError(w, r, startErr)
		return
	}

	resp := createSessionResponse{
		Session: toSessionResponse(session),
	}
	if s.tokenSecret != "" {
		token, err := issueSessionToken(s.tokenSecret, session.ID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		resp.Token = token
	}

	if startErr != nil {
		// The session was created but its first scene failed to generate.
		// Return the session anyway so the client can retry via /step.
		errutil.Handle(r.Context(), startErr, "first scene generation failed") //nolint:errcheck // reported in the response body
		resp.Error = startErr.Error()
		respondJSON(w, r, statusForError(startErr), resp)
		return
	}

	respondJSON(w, r, http.StatusCreated, resp)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(chi.URLParam(r, "sessionID"))

	session, err := s.uc.Workflow.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toSessionResponse(session))
}

func (s *Server) abandonSession(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(chi.URLParam(r, "sessionID"))

	if err := s.uc.Workflow.Abandon(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stepSession(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(chi.URLParam(r, "sessionID"))

	session, err := s.uc.Workflow.Step(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toSessionResponse(session))
}

type decisionRequest struct {
	Kind        string `json:"kind"`
	Instruction string `json:"instruction,omitempty"`
	MoreScenes  bool   `json:"more_scenes,omitempty"`
}

func (s *Server) decideSession(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(chi.URLParam(r, "sessionID"))

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidDecision, "invalid request body"))
		return
	}

	kind, err := types.ParseDecisionKind(req.Kind)
	if err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidDecision, "unknown decision kind", goerr.V("kind", req.Kind)))
		return
	}

	session, err := s.uc.Workflow.Decide(r.Context(), id, model.Decision{
		Kind:        kind,
		Instruction: req.Instruction,
		MoreScenes:  req.MoreScenes,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toSessionResponse(session))
}

func (s *Server) assembleSession(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(chi.URLParam(r, "sessionID"))

	doc, err := s.uc.Workflow.Assemble(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toDocumentResponse(doc))
}

// getDocument serves the assembled story as plain text. Assembly is
// idempotent, so repeated downloads return the same document.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(chi.URLParam(r, "sessionID"))

	doc, err := s.uc.Workflow.Assemble(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	safe.Write(r.Context(), w, []byte(doc.Content))
}
