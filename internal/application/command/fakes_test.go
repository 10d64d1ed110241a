package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// memRepo is an in-memory gamification.Repository for handler tests.
// It mirrors the storage contract: atomic increments returning fresh values,
// not-found errors carrying the shared.ErrNotFound kind, and badge
// uniqueness enforced on append.
type memRepo struct {
	mu     sync.Mutex
	states map[string]*gamification.UserGameState

	// failAddPoints makes every AddPoints call fail, for error paths.
	failAddPoints error
}

func newMemRepo() *memRepo {
	return &memRepo{states: make(map[string]*gamification.UserGameState)}
}

// seed registers a fresh user and returns it for further mutation.
func (r *memRepo) seed(userID string) *gamification.UserGameState {
	state, err := gamification.NewUserGameState(userID, "User "+userID, gamification.RoleStudent)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[userID] = state
	return state
}

func (r *memRepo) notFound(op, userID string) error {
	return shared.NewDomainError("gamification", op, shared.ErrNotFound,
		fmt.Sprintf("no game state for user %s", userID))
}

func (r *memRepo) Create(_ context.Context, state *gamification.UserGameState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.states[state.UserID]; ok {
		return shared.ErrUserStateExists
	}
	r.states[state.UserID] = state.Clone()
	return nil
}

func (r *memRepo) GetByUserID(_ context.Context, userID string) (*gamification.UserGameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return nil, r.notFound("GetByUserID", userID)
	}
	return state.Clone(), nil
}

func (r *memRepo) AddPoints(_ context.Context, userID string, delta gamification.Delta) (gamification.Points, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAddPoints != nil {
		return 0, r.failAddPoints
	}
	state, ok := r.states[userID]
	if !ok {
		return 0, r.notFound("AddPoints", userID)
	}
	state.Points = state.Points.Add(delta)
	return state.Points, nil
}

func (r *memRepo) SetLevel(_ context.Context, userID string, level gamification.Level) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return r.notFound("SetLevel", userID)
	}
	state.Level = level
	return nil
}

func (r *memRepo) AppendBadge(_ context.Context, userID string, badge gamification.Badge) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return false, r.notFound("AppendBadge", userID)
	}
	if state.HasBadge(badge.ID) {
		return false, nil
	}
	state.Badges = append(state.Badges, badge)
	return true, nil
}

func (r *memRepo) IncrementStat(_ context.Context, userID string, stat gamification.StatName, by int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return 0, r.notFound("IncrementStat", userID)
	}
	if err := state.Stats.Increment(stat, by); err != nil {
		return 0, err
	}
	return state.Stats.Counter(stat), nil
}

func (r *memRepo) UpdateStreak(_ context.Context, userID string, streak int, lastLogin time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return r.notFound("UpdateStreak", userID)
	}
	state.Stats.LoginStreak = streak
	state.Stats.LastLoginDate = &lastLogin
	return nil
}

// get returns the stored state for assertions.
func (r *memRepo) get(userID string) *gamification.UserGameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[userID]
}

// recordingBus is a synchronous shared.EventBus capturing published events.
type recordingBus struct {
	mu     sync.Mutex
	events []shared.Event
}

func newRecordingBus() *recordingBus {
	return &recordingBus{}
}

func (b *recordingBus) Subscribe(shared.EventType, shared.EventHandler) error { return nil }
func (b *recordingBus) SubscribeAll(shared.EventHandler) error                { return nil }
func (b *recordingBus) Close() error                                          { return nil }

func (b *recordingBus) Publish(event shared.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

// ofType filters captured events by type.
func (b *recordingBus) ofType(t shared.EventType) []shared.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]shared.Event, 0)
	for _, e := range b.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}
