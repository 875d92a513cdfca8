package engine

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/devoverflow/backend/internal/models"
)

// ReputationDeltas are the point adjustments for one vote transition, split
// by the role of the affected user.
type ReputationDeltas struct {
	Voter          int
	QuestionAuthor int
	AnswerAuthor   int
}

// ReputationRules is the platform's delta table. Switched entries apply when
// a vote flips polarity in a single toggle.
type ReputationRules struct {
	UpvoteAdded      ReputationDeltas
	UpvoteRemoved    ReputationDeltas
	UpvoteSwitched   ReputationDeltas // downvote flipped to upvote
	DownvoteAdded    ReputationDeltas
	DownvoteRemoved  ReputationDeltas
	DownvoteSwitched ReputationDeltas // upvote flipped to downvote

	AskBonus    int
	AnswerBonus int
}

func DefaultReputationRules() ReputationRules {
	return ReputationRules{
		UpvoteAdded:      ReputationDeltas{Voter: 2, QuestionAuthor: 5, AnswerAuthor: 10},
		UpvoteRemoved:    ReputationDeltas{Voter: -2, QuestionAuthor: -5, AnswerAuthor: -10},
		UpvoteSwitched:   ReputationDeltas{Voter: 4, QuestionAuthor: 10, AnswerAuthor: 20},
		DownvoteAdded:    ReputationDeltas{Voter: -1, QuestionAuthor: -2, AnswerAuthor: -5},
		DownvoteRemoved:  ReputationDeltas{Voter: 1, QuestionAuthor: 2, AnswerAuthor: 5},
		DownvoteSwitched: ReputationDeltas{Voter: -4, QuestionAuthor: -10, AnswerAuthor: -20},

		AskBonus:    5,
		AnswerBonus: 10,
	}
}

func (r ReputationRules) voteDeltas(t Transition, dir Direction) ReputationDeltas {
	if dir == DirectionUp {
		switch t {
		case TransitionAdded:
			return r.UpvoteAdded
		case TransitionRemoved:
			return r.UpvoteRemoved
		default:
			return r.UpvoteSwitched
		}
	}
	switch t {
	case TransitionAdded:
		return r.DownvoteAdded
	case TransitionRemoved:
		return r.DownvoteRemoved
	default:
		return r.DownvoteSwitched
	}
}

// applyVoteReputation applies the voter and author deltas for one transition
// inside the caller's transaction. Policy: both deltas commit or roll back
// together with the vote-set mutation, so no partial state is observable.
// The voter delta is mandatory; a missing author is tolerated and skipped.
func (e *Engine) applyVoteReputation(tx *gorm.DB, authorID, voterID int, t Transition, dir Direction, kind ContentKind) error {
	d := e.rules.voteDeltas(t, dir)

	if err := adjustReputation(tx, voterID, d.Voter, true); err != nil {
		return err
	}

	authorDelta := d.QuestionAuthor
	if kind == ContentAnswer {
		authorDelta = d.AnswerAuthor
	}
	return adjustReputation(tx, authorID, authorDelta, false)
}

func (e *Engine) contentBonus(kind ContentKind) int {
	if kind == ContentAnswer {
		return e.rules.AnswerBonus
	}
	return e.rules.AskBonus
}

// ApplyContentReputation credits an author for asking or answering,
// independent of voting.
func (e *Engine) ApplyContentReputation(ctx context.Context, authorID int, kind ContentKind) error {
	if authorID <= 0 {
		return ErrUnauthenticated
	}
	if !validKind(kind) {
		return fmt.Errorf("%w: unknown content kind %q", ErrValidation, kind)
	}
	return adjustReputation(e.db.WithContext(ctx), authorID, e.contentBonus(kind), true)
}

func adjustReputation(tx *gorm.DB, userID, delta int, required bool) error {
	if delta == 0 {
		return nil
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("reputation", gorm.Expr("reputation + ?", delta))
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if required && res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return nil
}
