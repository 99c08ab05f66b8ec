package memory

import (
	"github.com/storyspark-lab/storyspark/pkg/domain/interfaces"
)

// Memory is an in-memory Repository implementation for tests and the
// standalone CLI mode. All data is lost when the process exits.
type Memory struct {
	character *characterRepository
	session   *sessionRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		character: newCharacterRepository(),
		session:   newSessionRepository(),
	}
}

func (m *Memory) Character() interfaces.CharacterRepository {
	return m.character
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Close() error {
	return nil
}
