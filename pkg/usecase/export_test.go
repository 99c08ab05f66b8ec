package usecase

// ActiveSessionLocks reports how many per-session lock entries are held
func ActiveSessionLocks(uc *WorkflowUseCase) int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}
