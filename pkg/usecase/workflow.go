package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/interfaces"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/domain/model/config"
	"github.com/storyspark-lab/storyspark/pkg/domain/types"
	"github.com/storyspark-lab/storyspark/pkg/service/scenegen"
	"github.com/storyspark-lab/storyspark/pkg/utils/logging"
)

// WorkflowUseCase drives the scene-generation feedback loop: generate a
// scene, wait for the reviewer's decision, repeat, assemble. Sessions are
// durable between steps; a step either persists completely or not at all.
type WorkflowUseCase struct {
	repo       interfaces.Repository
	characters *CharacterUseCase
	scenes     scenegen.Service
	cfg        *config.StoryConfig
	publishers []DocumentPublisher

	mu       sync.Mutex
	sessions map[model.SessionID]*sync.Mutex
}

func NewWorkflowUseCase(repo interfaces.Repository, characters *CharacterUseCase, scenes scenegen.Service, cfg *config.StoryConfig, publishers []DocumentPublisher) *WorkflowUseCase {
	if cfg == nil {
		cfg = config.DefaultStoryConfig()
	}
	return &WorkflowUseCase{
		repo:       repo,
		characters: characters,
		scenes:     scenes,
		cfg:        cfg,
		publishers: publishers,
		sessions:   make(map[model.SessionID]*sync.Mutex),
	}
}

// lock serializes steps per session. Different sessions proceed
// independently.
func (uc *WorkflowUseCase) lock(id model.SessionID) func() {
	uc.mu.Lock()
	m, ok := uc.sessions[id]
	if !ok {
		m = &sync.Mutex{}
		uc.sessions[id] = m
	}
	uc.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (uc *WorkflowUseCase) forget(id model.SessionID) {
	uc.mu.Lock()
	delete(uc.sessions, id)
	uc.mu.Unlock()
}

// Start creates a new session and generates its first scene. When scene
// generation fails the session is still created in the retrieving phase;
// the caller retries with Step.
func (uc *WorkflowUseCase) Start(ctx context.Context, title, premise string) (*model.StorySession, error) {
	title = strings.TrimSpace(title)
	premise = strings.TrimSpace(premise)
	if premise == "" {
		return nil, goerr.Wrap(ErrInvalidArgument, "story premise is required")
	}

	session := &model.StorySession{
		ID: model.NewSessionID(),
		Prompt: model.StoryPrompt{
			Title:   title,
			Premise: premise,
		},
		CurrentIndex: 1,
		Phase:        types.SessionPhaseRetrieving,
	}

	if err := uc.repo.Session().Create(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to create session", goerr.V(SessionIDKey, session.ID))
	}

	unlock := uc.lock(session.ID)
	defer unlock()

	if err := uc.step(ctx, session); err != nil {
		// Session stays in retrieving; surface the failure with the
		// persisted state so the caller can retry.
		return session, err
	}

	return session, nil
}

// Step generates the scene at the current index. Valid only while the
// session is in the retrieving phase.
func (uc *WorkflowUseCase) Step(ctx context.Context, id model.SessionID) (*model.StorySession, error) {
	unlock := uc.lock(id)
	defer unlock()

	session, err := uc.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Phase != types.SessionPhaseRetrieving {
		return nil, goerr.Wrap(ErrInvalidArgument, "session is not awaiting generation",
			goerr.V(SessionIDKey, id), goerr.V("phase", session.Phase))
	}

	if err := uc.step(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// step retrieves the cast, generates the scene at CurrentIndex, and
// persists the session in awaiting_decision. The session is mutated only
// after generation succeeds, so a failure leaves both the in-memory and
// persisted state untouched. Caller holds the session lock.
func (uc *WorkflowUseCase) step(ctx context.Context, session *model.StorySession) error {
	cast, err := uc.characters.RetrieveForPrompt(ctx, session.Prompt.Premise, uc.cfg.RetrieveLimit)
	if err != nil {
		return goerr.Wrap(err, "character retrieval failed", goerr.V(SessionIDKey, session.ID))
	}

	text, err := uc.scenes.Generate(ctx, scenegen.Input{
		Prompt:      session.Prompt,
		SceneNumber: session.CurrentIndex,
		Characters:  cast,
		PriorScenes: sceneTexts(session.AcceptedScenes()),
	})
	if err != nil {
		return goerr.Wrap(err, "scene generation failed",
			goerr.V(SessionIDKey, session.ID), goerr.V("scene_index", session.CurrentIndex))
	}

	names := make([]string, 0, len(cast))
	for _, c := range cast {
		names = append(names, c.Name)
	}

	now := time.Now().UTC()
	if scene := session.SceneAt(session.CurrentIndex); scene != nil {
		scene.Text = text
		scene.Status = types.SceneStatusPending
		scene.Instruction = ""
		scene.CharacterNames = names
		scene.UpdatedAt = now
	} else {
		session.Scenes = append(session.Scenes, &model.Scene{
			Index:          session.CurrentIndex,
			Text:           text,
			Status:         types.SceneStatusPending,
			CharacterNames: names,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	session.Phase = types.SessionPhaseAwaitingDecision

	if err := uc.repo.Session().Update(ctx, session); err != nil {
		return goerr.Wrap(err, "failed to persist session", goerr.V(SessionIDKey, session.ID))
	}

	logging.From(ctx).Info("scene generated",
		"session_id", session.ID,
		"scene_index", session.CurrentIndex,
		"characters", names)

	return nil
}

// Decide applies the reviewer's verdict to the pending scene. Valid only
// in the awaiting_decision phase.
func (uc *WorkflowUseCase) Decide(ctx context.Context, id model.SessionID, decision model.Decision) (*model.StorySession, error) {
	unlock := uc.lock(id)
	defer unlock()

	session, err := uc.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Phase != types.SessionPhaseAwaitingDecision {
		return nil, goerr.Wrap(ErrInvalidDecision, "session is not awaiting a decision",
			goerr.V(SessionIDKey, id), goerr.V("phase", session.Phase))
	}
	if !decision.Kind.IsValid() {
		return nil, goerr.Wrap(ErrInvalidDecision, "unknown decision kind",
			goerr.V(SessionIDKey, id), goerr.V("kind", decision.Kind))
	}

	pending := session.PendingScene()
	if pending == nil {
		return nil, goerr.Wrap(ErrInvalidDecision, "no pending scene to decide on",
			goerr.V(SessionIDKey, id), goerr.V("scene_index", session.CurrentIndex))
	}

	switch decision.Kind {
	case types.DecisionAccept:
		return session, uc.accept(ctx, session, pending, decision.MoreScenes)

	case types.DecisionReject:
		return session, uc.redo(ctx, session, pending, "")

	case types.DecisionRewrite:
		instruction := strings.TrimSpace(decision.Instruction)
		if instruction == "" {
			return nil, goerr.Wrap(ErrInvalidDecision, "rewrite requires an instruction",
				goerr.V(SessionIDKey, id))
		}
		return session, uc.redo(ctx, session, pending, instruction)

	default:
		return nil, goerr.Wrap(ErrInvalidDecision, "unhandled decision kind",
			goerr.V(SessionIDKey, id), goerr.V("kind", decision.Kind))
	}
}

// accept marks the pending scene accepted and either advances to the
// next scene or moves the session to assembly. Reaching the scene cap
// always ends the loop.
func (uc *WorkflowUseCase) accept(ctx context.Context, session *model.StorySession, scene *model.Scene, moreScenes bool) error {
	now := time.Now().UTC()
	scene.Status = types.SceneStatusAccepted
	scene.UpdatedAt = now

	if moreScenes && session.CurrentIndex < uc.cfg.MaxScenes {
		session.CurrentIndex++
		session.Phase = types.SessionPhaseRetrieving
		if err := uc.repo.Session().Update(ctx, session); err != nil {
			return goerr.Wrap(err, "failed to persist session", goerr.V(SessionIDKey, session.ID))
		}

		// Generate the next scene right away. A failure here leaves the
		// session durable in retrieving with all accepted scenes intact.
		return uc.step(ctx, session)
	}

	session.Phase = types.SessionPhaseAssembling
	if err := uc.repo.Session().Update(ctx, session); err != nil {
		return goerr.Wrap(err, "failed to persist session", goerr.V(SessionIDKey, session.ID))
	}

	return nil
}

// redo regenerates the pending scene, optionally with a rewrite
// instruction. Content is replaced and status reset to pending; the
// session stays in awaiting_decision. On failure nothing changes: the
// session is a fresh copy from the repository, so the in-flight status
// below is never stored unless regeneration succeeds.
func (uc *WorkflowUseCase) redo(ctx context.Context, session *model.StorySession, scene *model.Scene, instruction string) error {
	input := scenegen.Input{
		Prompt:      session.Prompt,
		SceneNumber: scene.Index,
		PriorScenes: sceneTexts(session.AcceptedScenes()),
	}

	var names []string
	if instruction != "" {
		scene.Status = types.SceneStatusRewritten
		input.Instruction = instruction
		input.CurrentText = scene.Text
		names = scene.CharacterNames
	} else {
		scene.Status = types.SceneStatusRejected
		cast, err := uc.characters.RetrieveForPrompt(ctx, session.Prompt.Premise, uc.cfg.RetrieveLimit)
		if err != nil {
			return goerr.Wrap(err, "character retrieval failed", goerr.V(SessionIDKey, session.ID))
		}
		input.Characters = cast
		names = make([]string, 0, len(cast))
		for _, c := range cast {
			names = append(names, c.Name)
		}
	}

	text, err := uc.scenes.Generate(ctx, input)
	if err != nil {
		return goerr.Wrap(err, "scene regeneration failed",
			goerr.V(SessionIDKey, session.ID), goerr.V("scene_index", scene.Index))
	}

	scene.Text = text
	scene.Status = types.SceneStatusPending
	scene.Instruction = instruction
	scene.CharacterNames = names
	scene.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Session().Update(ctx, session); err != nil {
		return goerr.Wrap(err, "failed to persist session", goerr.V(SessionIDKey, session.ID))
	}

	return nil
}

// Assemble produces the final document from a fully accepted session and
// moves it to done. It is idempotent: assembling a done session returns
// the same document again.
func (uc *WorkflowUseCase) Assemble(ctx context.Context, id model.SessionID) (*model.Document, error) {
	unlock := uc.lock(id)
	defer unlock()

	session, err := uc.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	switch session.Phase {
	case types.SessionPhaseAssembling, types.SessionPhaseDone:
	default:
		return nil, goerr.Wrap(ErrStoryIncomplete, "session is still in progress",
			goerr.V(SessionIDKey, id), goerr.V("phase", session.Phase))
	}

	doc, err := model.AssembleDocument(session)
	if err != nil {
		return nil, err
	}

	if session.Phase != types.SessionPhaseDone {
		session.Phase = types.SessionPhaseDone
		if err := uc.repo.Session().Update(ctx, session); err != nil {
			return nil, goerr.Wrap(err, "failed to persist session", goerr.V(SessionIDKey, id))
		}
		uc.publishDocument(ctx, session.ID, doc)
	}

	// The session sees no more stateful steps once done; drop its lock
	// entry so finished sessions do not accumulate.
	uc.forget(id)

	return doc, nil
}

func (uc *WorkflowUseCase) Get(ctx context.Context, id model.SessionID) (*model.StorySession, error) {
	return uc.getSession(ctx, id)
}

// Abandon deletes the session in any phase
func (uc *WorkflowUseCase) Abandon(ctx context.Context, id model.SessionID) error {
	unlock := uc.lock(id)
	defer unlock()

	if err := uc.repo.Session().Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrSessionNotFound, "cannot abandon unknown session", goerr.V(SessionIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete session", goerr.V(SessionIDKey, id))
	}

	uc.forget(id)
	return nil
}

func (uc *WorkflowUseCase) getSession(ctx context.Context, id model.SessionID) (*model.StorySession, error) {
	session, err := uc.repo.Session().Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrSessionNotFound, "no such session", goerr.V(SessionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V(SessionIDKey, id))
	}
	return session, nil
}

func sceneTexts(scenes []*model.Scene) []string {
	texts := make([]string, 0, len(scenes))
	for _, s := range scenes {
		texts = append(texts, s.Text)
	}
	return texts
}
