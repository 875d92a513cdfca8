package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devoverflow/backend/internal/engine"
	"github.com/devoverflow/backend/internal/models"
)

func TestVoteToggleTransitions(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	voter := newUser(t)
	question := newQuestion(t, author, "toggle transitions")

	// None -> Upvoted
	res, err := core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, engine.TransitionAdded, res.Transition)
	assert.Equal(t, 1, res.Upvotes)
	assert.Equal(t, 0, res.Downvotes)
	assert.True(t, res.HasUpvoted)
	assert.False(t, res.HasDownvoted)

	// Upvoted -> Downvoted (switch)
	res, err = core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, engine.TransitionSwitched, res.Transition)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)
	assert.False(t, res.HasUpvoted)
	assert.True(t, res.HasDownvoted)

	// Downvoted -> None (undo)
	res, err = core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, engine.TransitionRemoved, res.Transition)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 0, res.Downvotes)
	assert.False(t, res.HasUpvoted)
	assert.False(t, res.HasDownvoted)
}

func TestVoteIdempotentUndo(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	voter := newUser(t)
	question := newQuestion(t, author, "idempotent undo")

	before, err := core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, 1, before.Upvotes)

	after, err := core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, engine.TransitionRemoved, after.Transition)
	assert.Equal(t, 0, after.Upvotes)
	assert.Equal(t, 0, after.Downvotes)

	up, down, err := core.VoteCounts(ctx, engine.ContentQuestion, question.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, up)
	assert.Equal(t, 0, down)
}

func TestVoteMutualExclusion(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	voter := newUser(t)
	question := newQuestion(t, author, "mutual exclusion")

	sequence := []engine.Direction{
		engine.DirectionUp, engine.DirectionDown, engine.DirectionDown,
		engine.DirectionUp, engine.DirectionUp, engine.DirectionDown,
	}
	for _, dir := range sequence {
		_, err := core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, dir)
		require.NoError(t, err)

		var rows int64
		require.NoError(t, testDB.Model(&models.Vote{}).
			Where("question_id = ? AND user_id = ?", question.ID, voter.ID).
			Count(&rows).Error)
		assert.LessOrEqual(t, rows, int64(1), "user must never hold more than one vote on an item")
	}
}

func TestVoteAnswer(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	voter := newUser(t)
	question := newQuestion(t, author, "answer votes")
	answer := newAnswer(t, author, question)

	res, err := core.Vote(ctx, engine.ContentAnswer, answer.ID, voter.ID, engine.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upvotes)

	hasUp, hasDown, err := core.VoteStatus(ctx, engine.ContentAnswer, answer.ID, voter.ID)
	require.NoError(t, err)
	assert.True(t, hasUp)
	assert.False(t, hasDown)
}

func TestVoteErrors(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	voter := newUser(t)

	_, err := core.Vote(ctx, engine.ContentQuestion, 999999999, voter.ID, engine.DirectionUp)
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = core.Vote(ctx, engine.ContentQuestion, 1, 0, engine.DirectionUp)
	assert.ErrorIs(t, err, engine.ErrUnauthenticated)

	_, err = core.Vote(ctx, engine.ContentQuestion, 1, voter.ID, engine.Direction(3))
	assert.ErrorIs(t, err, engine.ErrValidation)

	_, err = core.Vote(ctx, engine.ContentKind("post"), 1, voter.ID, engine.DirectionUp)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestVoteConcurrentDistinctUsers(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	question := newQuestion(t, author, "concurrent distinct voters")

	const voters = 8
	users := make([]models.User, voters)
	for i := range users {
		users[i] = newUser(t)
	}

	var wg sync.WaitGroup
	errs := make([]error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = core.Vote(ctx, engine.ContentQuestion, question.ID, users[i].ID, engine.DirectionUp)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "voter %d", i)
	}

	up, down, err := core.VoteCounts(ctx, engine.ContentQuestion, question.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, up, "no concurrent addition may be lost")
	assert.Equal(t, 0, down)
}

func TestVoteConcurrentSameUserDoubleToggle(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	voter := newUser(t)
	question := newQuestion(t, author, "double toggle race")

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionUp)
		}(i)
	}
	wg.Wait()

	// Racing toggles either serialize or get rejected with a retryable
	// conflict; either way the stored state stays consistent.
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, engine.ErrConflict)
		}
	}

	var rows int64
	require.NoError(t, testDB.Model(&models.Vote{}).
		Where("question_id = ? AND user_id = ?", question.ID, voter.ID).
		Count(&rows).Error)
	assert.LessOrEqual(t, rows, int64(1))

	up, down, err := core.VoteCounts(ctx, engine.ContentQuestion, question.ID)
	require.NoError(t, err)
	assert.Equal(t, int(rows), up+down, "derived counts must match vote-set membership")
}

func TestVoteRollsBackWhenVoterMissing(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	question := newQuestion(t, author, "phantom voter")

	phantomID := 999999998
	_, err := core.Vote(ctx, engine.ContentQuestion, question.ID, phantomID, engine.DirectionUp)
	require.Error(t, err)
	require.True(t, errors.Is(err, engine.ErrNotFound))

	// The whole transaction rolled back: no vote row, no interaction.
	var rows int64
	require.NoError(t, testDB.Model(&models.Vote{}).
		Where("question_id = ? AND user_id = ?", question.ID, phantomID).
		Count(&rows).Error)
	assert.Zero(t, rows)
	assert.Zero(t, interactionCount(t, phantomID, engine.ActionUpvote, question.ID))
}

func TestVoteToleratesMissingAuthor(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	voter := newUser(t)
	question := newQuestion(t, author, "deleted author")
	require.NoError(t, testDB.Delete(&models.User{}, author.ID).Error)

	res, err := core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upvotes)
	assert.Equal(t, 2, reputationOf(t, voter.ID))
}
