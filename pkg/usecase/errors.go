package usecase

import (
	"errors"

	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/repository/firestore"
	"github.com/storyspark-lab/storyspark/pkg/repository/memory"
	"github.com/storyspark-lab/storyspark/pkg/service/scenegen"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrCharacterNotFound = errors.New("character not found")
	ErrSessionNotFound   = errors.New("session not found")

	// Validation errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidDecision = errors.New("invalid decision")

	// Re-exported collaborator sentinels so callers can match on this
	// package alone
	ErrGenerationFailed = scenegen.ErrGenerationFailed
	ErrStoryIncomplete  = model.ErrStoryIncomplete
)

// Context keys for error values
const (
	CharacterIDKey = "character_id"
	SessionIDKey   = "session_id"
)

// isNotFound matches the not-found sentinel of either repository backend
func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}
