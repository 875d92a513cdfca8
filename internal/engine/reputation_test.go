package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devoverflow/backend/internal/engine"
)

func TestReputationDeltaTable(t *testing.T) {
	core := newEngine()
	ctx := context.Background()
	rules := engine.DefaultReputationRules()

	author := newUser(t)
	voter := newUser(t)
	question := newQuestion(t, author, "delta table")
	answer := newAnswer(t, author, question)

	// Upvote added on a question: voter +2, author +5.
	_, err := core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, rules.UpvoteAdded.Voter, reputationOf(t, voter.ID))
	assert.Equal(t, rules.UpvoteAdded.QuestionAuthor, reputationOf(t, author.ID))

	// Switched up->down: voter -4, author -10.
	_, err = core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, rules.UpvoteAdded.Voter+rules.DownvoteSwitched.Voter, reputationOf(t, voter.ID))
	assert.Equal(t, rules.UpvoteAdded.QuestionAuthor+rules.DownvoteSwitched.QuestionAuthor, reputationOf(t, author.ID))

	// Downvote removed: voter +1, author +2; both return to their pre-switch values.
	_, err = core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionDown)
	require.NoError(t, err)
	voterTotal := rules.UpvoteAdded.Voter + rules.DownvoteSwitched.Voter + rules.DownvoteRemoved.Voter
	authorTotal := rules.UpvoteAdded.QuestionAuthor + rules.DownvoteSwitched.QuestionAuthor + rules.DownvoteRemoved.QuestionAuthor
	assert.Equal(t, voterTotal, reputationOf(t, voter.ID))
	assert.Equal(t, authorTotal, reputationOf(t, author.ID))

	// Answer votes use the answer-author column: +10 on an added upvote.
	authorBefore := reputationOf(t, author.ID)
	voterBefore := reputationOf(t, voter.ID)
	_, err = core.Vote(ctx, engine.ContentAnswer, answer.ID, voter.ID, engine.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, voterBefore+rules.UpvoteAdded.Voter, reputationOf(t, voter.ID))
	assert.Equal(t, authorBefore+rules.UpvoteAdded.AnswerAuthor, reputationOf(t, author.ID))
}

func TestReputationAddThenSwitchScenario(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	voter := newUser(t)
	question := newQuestion(t, author, "add then switch")

	res, err := core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upvotes)
	assert.Equal(t, 0, res.Downvotes)

	res, err = core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, engine.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)

	// Added up (+5) then switched up->down (-10): net -5 for the author.
	assert.Equal(t, -5, reputationOf(t, author.ID))
}

func TestContentReputation(t *testing.T) {
	core := newEngine()
	ctx := context.Background()
	rules := engine.DefaultReputationRules()

	asker := newUser(t)
	answerer := newUser(t)
	question := newQuestion(t, asker, "content bonuses")
	answer := newAnswer(t, answerer, question)

	require.NoError(t, core.RecordAuthorship(ctx, asker.ID, question.ID, engine.ContentQuestion))
	assert.Equal(t, rules.AskBonus, reputationOf(t, asker.ID))
	assert.Equal(t, int64(1), interactionCount(t, asker.ID, engine.ActionAsk, question.ID))

	require.NoError(t, core.RecordAuthorship(ctx, answerer.ID, answer.ID, engine.ContentAnswer))
	assert.Equal(t, rules.AnswerBonus, reputationOf(t, answerer.ID))
}

// Reputation is a fold over the transition history: replaying the recorded
// transitions through the rule table must reproduce the stored value.
func TestReputationConservation(t *testing.T) {
	core := newEngine()
	ctx := context.Background()
	rules := engine.DefaultReputationRules()

	author := newUser(t)
	voter := newUser(t)
	question := newQuestion(t, author, "conservation")

	voterStart := reputationOf(t, voter.ID)
	authorStart := reputationOf(t, author.ID)

	sequence := []engine.Direction{
		engine.DirectionUp, engine.DirectionDown, engine.DirectionDown,
		engine.DirectionUp, engine.DirectionUp,
	}

	voterSum, authorSum := 0, 0
	for _, dir := range sequence {
		res, err := core.Vote(ctx, engine.ContentQuestion, question.ID, voter.ID, dir)
		require.NoError(t, err)

		var d engine.ReputationDeltas
		switch {
		case dir == engine.DirectionUp && res.Transition == engine.TransitionAdded:
			d = rules.UpvoteAdded
		case dir == engine.DirectionUp && res.Transition == engine.TransitionRemoved:
			d = rules.UpvoteRemoved
		case dir == engine.DirectionUp:
			d = rules.UpvoteSwitched
		case res.Transition == engine.TransitionAdded:
			d = rules.DownvoteAdded
		case res.Transition == engine.TransitionRemoved:
			d = rules.DownvoteRemoved
		default:
			d = rules.DownvoteSwitched
		}
		voterSum += d.Voter
		authorSum += d.QuestionAuthor
	}

	assert.Equal(t, voterStart+voterSum, reputationOf(t, voter.ID))
	assert.Equal(t, authorStart+authorSum, reputationOf(t, author.ID))
}

func TestApplyContentReputationValidation(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	err := core.ApplyContentReputation(ctx, 0, engine.ContentQuestion)
	assert.ErrorIs(t, err, engine.ErrUnauthenticated)

	user := newUser(t)
	err = core.ApplyContentReputation(ctx, user.ID, engine.ContentKind("post"))
	assert.ErrorIs(t, err, engine.ErrValidation)
}
