package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

func newStatsHandler(repo *memRepo, bus *recordingBus) *UpdateUserStatsHandler {
	return NewUpdateUserStatsHandler(repo, newChecker(repo, bus), bus, nil)
}

func TestUpdateUserStats(t *testing.T) {
	repo := newMemRepo()
	repo.seed("u1")
	bus := newRecordingBus()
	handler := newStatsHandler(repo, bus)

	res, err := handler.Handle(context.Background(), UpdateUserStatsCommand{
		UserID: "u1",
		Stat:   gamification.StatCommentsPosted,
	})
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	assert.Equal(t, 1, res.NewValue, "zero increment defaults to 1")
	assert.Equal(t, 1, repo.get("u1").Stats.CommentsPosted)
	assert.Len(t, bus.ofType(shared.EventStatIncremented), 1)
}

func TestUpdateUserStatsTriggersBadge(t *testing.T) {
	repo := newMemRepo()
	repo.seed("u1")
	handler := newStatsHandler(repo, newRecordingBus())

	res, err := handler.Handle(context.Background(), UpdateUserStatsCommand{
		UserID: "u1",
		Stat:   gamification.StatPostsCreated,
	})
	require.NoError(t, err)

	assert.Equal(t, []gamification.BadgeID{gamification.BadgeFirstPost}, res.BadgesGranted)
	assert.True(t, repo.get("u1").HasBadge(gamification.BadgeFirstPost))
}

func TestUpdateUserStatsExplicitIncrement(t *testing.T) {
	repo := newMemRepo()
	repo.seed("u1")
	handler := newStatsHandler(repo, newRecordingBus())

	res, err := handler.Handle(context.Background(), UpdateUserStatsCommand{
		UserID:    "u1",
		Stat:      gamification.StatStudyGroupsJoined,
		Increment: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.NewValue)
	assert.Contains(t, res.BadgesGranted, gamification.BadgeSocialButterfly)
}

func TestUpdateUserStatsUnknownUser(t *testing.T) {
	handler := newStatsHandler(newMemRepo(), newRecordingBus())

	res, err := handler.Handle(context.Background(), UpdateUserStatsCommand{
		UserID: "ghost",
		Stat:   gamification.StatPostsCreated,
	})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}

func TestUpdateUserStatsValidation(t *testing.T) {
	handler := newStatsHandler(newMemRepo(), newRecordingBus())
	ctx := context.Background()

	_, err := handler.Handle(ctx, UpdateUserStatsCommand{UserID: "u1", Stat: "bogus"})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = handler.Handle(ctx, UpdateUserStatsCommand{
		UserID:    "u1",
		Stat:      gamification.StatPostsCreated,
		Increment: -1,
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
