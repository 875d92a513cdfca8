package engine

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devoverflow/backend/internal/models"
)

// VoteResult is the item's derived vote state after a toggle.
type VoteResult struct {
	Upvotes      int        `json:"upvotes"`
	Downvotes    int        `json:"downvotes"`
	HasUpvoted   bool       `json:"has_upvoted"`
	HasDownvoted bool       `json:"has_downvoted"`
	Transition   Transition `json:"-"`
}

// Vote toggles a user's vote on a content item and returns the resulting
// counts. State machine per (user, item): no vote + toggle adds one, same
// vote toggled again removes it, the opposite vote switches polarity. A user
// is never in both vote sets at once.
//
// The row lock on the existing vote serializes double submits for the same
// (user, item); the unique indexes on the votes table turn a racing insert
// into ErrConflict. Vote mutation, reputation deltas and the interaction row
// commit as one transaction.
func (e *Engine) Vote(ctx context.Context, kind ContentKind, itemID, userID int, dir Direction) (VoteResult, error) {
	var res VoteResult

	if userID <= 0 {
		return res, ErrUnauthenticated
	}
	if !validKind(kind) {
		return res, fmt.Errorf("%w: unknown content kind %q", ErrValidation, kind)
	}
	if dir != DirectionUp && dir != DirectionDown {
		return res, fmt.Errorf("%w: direction must be up or down", ErrValidation)
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authorID, tagIDs, err := loadTarget(tx, kind, itemID)
		if err != nil {
			return err
		}

		var existing models.Vote
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(voteColumn(kind)+" = ? AND user_id = ?", itemID, userID).
			First(&existing).Error

		want := int(dir)
		switch {
		case err == nil && existing.VoteType == want:
			// Same vote again - a toggle is its own undo.
			if err := tx.Delete(&existing).Error; err != nil {
				return storeErr(err)
			}
			res.Transition = TransitionRemoved
		case err == nil:
			existing.VoteType = want
			if err := tx.Save(&existing).Error; err != nil {
				return storeErr(err)
			}
			res.Transition = TransitionSwitched
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{UserID: userID, VoteType: want}
			if kind == ContentQuestion {
				vote.QuestionID = &itemID
			} else {
				vote.AnswerID = &itemID
			}
			if err := tx.Create(&vote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrConflict
				}
				return storeErr(err)
			}
			res.Transition = TransitionAdded
		default:
			return storeErr(err)
		}

		if err := e.applyVoteReputation(tx, authorID, userID, res.Transition, dir, kind); err != nil {
			return err
		}

		action := ActionUpvote
		if dir == DirectionDown {
			action = ActionDownvote
		}
		if err := insertInteraction(tx, userID, action, kind, itemID, tagIDs); err != nil {
			return err
		}

		res.Upvotes, res.Downvotes, err = voteCounts(tx, kind, itemID)
		if err != nil {
			return err
		}
		if res.Transition != TransitionRemoved {
			res.HasUpvoted = dir == DirectionUp
			res.HasDownvoted = dir == DirectionDown
		}
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}
	return res, nil
}

// VoteStatus reports whether the user is currently in the item's upvoter or
// downvoter set.
func (e *Engine) VoteStatus(ctx context.Context, kind ContentKind, itemID, userID int) (hasUpvoted, hasDownvoted bool, err error) {
	if userID <= 0 {
		return false, false, nil
	}
	var vote models.Vote
	err = e.db.WithContext(ctx).
		Where(voteColumn(kind)+" = ? AND user_id = ?", itemID, userID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, storeErr(err)
	}
	return vote.VoteType == int(DirectionUp), vote.VoteType == int(DirectionDown), nil
}

// VoteCounts derives the item's counts from vote-set membership.
func (e *Engine) VoteCounts(ctx context.Context, kind ContentKind, itemID int) (upvotes, downvotes int, err error) {
	return voteCounts(e.db.WithContext(ctx), kind, itemID)
}

func voteColumn(kind ContentKind) string {
	if kind == ContentAnswer {
		return "answer_id"
	}
	return "question_id"
}

func voteCounts(tx *gorm.DB, kind ContentKind, itemID int) (int, int, error) {
	var up, down int64
	col := voteColumn(kind)
	if err := tx.Model(&models.Vote{}).Where(col+" = ? AND vote_type = ?", itemID, 1).Count(&up).Error; err != nil {
		return 0, 0, storeErr(err)
	}
	if err := tx.Model(&models.Vote{}).Where(col+" = ? AND vote_type = ?", itemID, -1).Count(&down).Error; err != nil {
		return 0, 0, storeErr(err)
	}
	return int(up), int(down), nil
}

// loadTarget resolves the voted item's author and its tag ids for the
// interaction snapshot. Answers carry their parent question's tags.
func loadTarget(tx *gorm.DB, kind ContentKind, itemID int) (authorID int, tagIDs []int, err error) {
	if kind == ContentAnswer {
		var answer models.Answer
		if err := tx.First(&answer, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil, ErrNotFound
			}
			return 0, nil, storeErr(err)
		}
		tagIDs, err = questionTagIDs(tx, answer.QuestionID)
		return answer.AuthorID, tagIDs, err
	}

	var question models.Question
	if err := tx.First(&question, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrNotFound
		}
		return 0, nil, storeErr(err)
	}
	tagIDs, err = questionTagIDs(tx, question.ID)
	return question.AuthorID, tagIDs, err
}

func questionTagIDs(tx *gorm.DB, questionID int) ([]int, error) {
	var tagIDs []int
	err := tx.Table("question_tags").
		Where("question_id = ?", questionID).
		Order("tag_id").
		Pluck("tag_id", &tagIDs).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return tagIDs, nil
}
