package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

func TestGetUserProgress(t *testing.T) {
	state := rankedState("u1", 200)
	state.Stats.PostsCreated = 4
	state.Stats.LoginStreak = 2
	def, _ := gamification.DefinitionByID(gamification.BadgeFirstPost)
	_, err := state.GrantBadge(def, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	handler := NewGetUserProgressHandler(newMemStates(state), nil)

	res, err := handler.Handle(context.Background(), GetUserProgressQuery{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, 200, res.Points)
	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 100, res.PointsToNextLevel, "level 3 opens at 300")
	assert.Equal(t, 50, res.LevelProgress, "halfway through the 100..300 band")
	assert.Equal(t, 1, res.BadgeCount)
	require.Len(t, res.Badges, 1)
	assert.Equal(t, string(gamification.BadgeFirstPost), res.Badges[0].ID)
	assert.Equal(t, 4, res.Stats.PostsCreated)
	assert.Equal(t, 2, res.Stats.LoginStreak)
}

func TestGetUserProgressTopLevel(t *testing.T) {
	handler := NewGetUserProgressHandler(newMemStates(rankedState("u1", 5000)), nil)

	res, err := handler.Handle(context.Background(), GetUserProgressQuery{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Level)
	assert.Equal(t, 0, res.PointsToNextLevel)
	assert.Equal(t, 100, res.LevelProgress)
}

func TestGetUserProgressUnknownUser(t *testing.T) {
	handler := NewGetUserProgressHandler(newMemStates(), nil)

	_, err := handler.Handle(context.Background(), GetUserProgressQuery{UserID: "ghost"})
	assert.ErrorIs(t, err, shared.ErrUserStateNotFound)
}

func TestGetUserBadges(t *testing.T) {
	state := rankedState("u1", 0)
	first, _ := gamification.DefinitionByID(gamification.BadgeFirstPost)
	second, _ := gamification.DefinitionByID(gamification.BadgeActiveLearner)
	_, err := state.GrantBadge(first, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = state.GrantBadge(second, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	handler := NewGetUserBadgesHandler(newMemStates(state), nil)

	res, err := handler.Handle(context.Background(), GetUserBadgesQuery{UserID: "u1"})
	require.NoError(t, err)

	require.Len(t, res.Badges, 2)
	assert.Equal(t, string(gamification.BadgeFirstPost), res.Badges[0].ID, "grant order preserved")
	assert.Equal(t, string(gamification.BadgeActiveLearner), res.Badges[1].ID)
}

func TestGetUserBadgesUnknownUser(t *testing.T) {
	handler := NewGetUserBadgesHandler(newMemStates(), nil)

	_, err := handler.Handle(context.Background(), GetUserBadgesQuery{UserID: "ghost"})
	assert.ErrorIs(t, err, shared.ErrUserStateNotFound)
}
