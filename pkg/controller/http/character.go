package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	domainConfig "github.com/storyspark-lab/storyspark/pkg/domain/model/config"
	"github.com/storyspark-lab/storyspark/pkg/usecase"
)

type characterRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createCharacter(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidArgument, "invalid request body"))
		return
	}

	character, err := s.uc.Character.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toCharacterResponse(character))
}

func (s *Server) listCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := s.uc.Character.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"characters": toCharacterResponses(characters),
	})
}

func (s *Server) searchCharacters(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := domainConfig.DefaultRetrieveLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			handleError(w, r, goerr.Wrap(usecase.ErrInvalidArgument, "invalid limit", goerr.V("limit", raw)))
			return
		}
		limit = parsed
	}

	characters, err := s.uc.Character.FindSimilar(r.Context(), query, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"characters": toCharacterResponses(characters),
	})
}

func (s *Server) getCharacter(w http.ResponseWriter, r *http.Request) {
	id := model.CharacterID(chi.URLParam(r, "characterID"))

	character, err := s.uc.Character.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toCharacterResponse(character))
}

func (s *Server) updateCharacter(w http.ResponseWriter, r *http.Request) {
	id := model.CharacterID(chi.URLParam(r, "characterID"))

	var req characterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidArgument, "invalid request body"))
		return
	}

	character, err := s.uc.Character.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toCharacterResponse(character))
}

func (s *Server) deleteCharacter(w http.ResponseWriter, r *http.Request) {
	id := model.CharacterID(chi.URLParam(r, "characterID"))

	if err := s.uc.Character.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
