package engine

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devoverflow/backend/internal/models"
)

// Record appends an interaction with a snapshot of the target's tag ids.
// View actions are idempotent per (user, question): a duplicate is a no-op
// reporting created=false. Every other action kind appends a fresh row. The
// target is not required to exist; the log tolerates orphaned references.
func (e *Engine) Record(ctx context.Context, userID int, action ActionKind, kind ContentKind, itemID int, tagIDs []int) (bool, error) {
	if userID <= 0 {
		return false, ErrUnauthenticated
	}
	if action == ActionView && kind != ContentQuestion {
		// The dedup index keys on question_id; answer views have no
		// idempotence guarantee and are not a recordable action.
		return false, fmt.Errorf("%w: view actions target questions", ErrValidation)
	}

	created := false
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if action == ActionView {
			var n int64
			err := tx.Model(&models.Interaction{}).
				Where("user_id = ? AND action = ? AND question_id = ?", userID, ActionView, itemID).
				Count(&n).Error
			if err != nil {
				return storeErr(err)
			}
			if n > 0 {
				return nil
			}
		}

		if err := insertInteraction(tx, userID, action, kind, itemID, tagIDs); err != nil {
			if errors.Is(err, ErrConflict) {
				// Lost the race to a concurrent duplicate view; the row
				// exists, which is all recording asks for.
				return nil
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// RecordView bumps the question's view counter and logs the deduplicated
// view interaction as one unit.
func (e *Engine) RecordView(ctx context.Context, questionID, userID int) error {
	if userID <= 0 {
		return ErrUnauthenticated
	}

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Question{}).
			Where("id = ?", questionID).
			UpdateColumn("views", gorm.Expr("views + 1"))
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		var n int64
		err := tx.Model(&models.Interaction{}).
			Where("user_id = ? AND action = ? AND question_id = ?", userID, ActionView, questionID).
			Count(&n).Error
		if err != nil {
			return storeErr(err)
		}
		if n > 0 {
			return nil
		}

		tagIDs, err := questionTagIDs(tx, questionID)
		if err != nil {
			return err
		}
		if err := insertInteraction(tx, userID, ActionView, ContentQuestion, questionID, tagIDs); err != nil {
			if errors.Is(err, ErrConflict) {
				return nil
			}
			return err
		}
		return nil
	})
}

// RecordAuthorship logs an ask or answer action with the question's tag
// snapshot and credits the author's content bonus, as one unit.
func (e *Engine) RecordAuthorship(ctx context.Context, userID, itemID int, kind ContentKind) error {
	if userID <= 0 {
		return ErrUnauthenticated
	}
	if !validKind(kind) {
		return fmt.Errorf("%w: unknown content kind %q", ErrValidation, kind)
	}

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		action := ActionAsk
		questionID := itemID
		if kind == ContentAnswer {
			action = ActionAnswer
			var answer models.Answer
			if err := tx.First(&answer, itemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return storeErr(err)
			}
			questionID = answer.QuestionID
		}

		tagIDs, err := questionTagIDs(tx, questionID)
		if err != nil {
			return err
		}
		if err := insertInteraction(tx, userID, action, kind, itemID, tagIDs); err != nil {
			return err
		}
		return adjustReputation(tx, userID, e.contentBonus(kind), true)
	})
}

// PurgeContent removes a deleted item's votes and interactions together
// with the interaction tag snapshots, inside the caller's transaction.
func PurgeContent(tx *gorm.DB, kind ContentKind, itemID int) error {
	if !validKind(kind) {
		return fmt.Errorf("%w: unknown content kind %q", ErrValidation, kind)
	}
	column := voteColumn(kind)

	var interactionIDs []int
	err := tx.Model(&models.Interaction{}).
		Where(column+" = ?", itemID).
		Pluck("id", &interactionIDs).Error
	if err != nil {
		return storeErr(err)
	}
	if len(interactionIDs) > 0 {
		if err := tx.Where("interaction_id IN ?", interactionIDs).Delete(&models.InteractionTag{}).Error; err != nil {
			return storeErr(err)
		}
	}
	if err := tx.Where(column+" = ?", itemID).Delete(&models.Interaction{}).Error; err != nil {
		return storeErr(err)
	}
	if err := tx.Where(column+" = ?", itemID).Delete(&models.Vote{}).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

// insertInteraction writes the interaction row plus its tag snapshot inside
// the caller's transaction. View rows hit the partial unique index guarding
// concurrent duplicates; the insert goes through ON CONFLICT DO NOTHING so a
// lost race surfaces as ErrConflict without aborting the transaction.
func insertInteraction(tx *gorm.DB, userID int, action ActionKind, kind ContentKind, itemID int, tagIDs []int) error {
	row := models.Interaction{UserID: userID, Action: string(action)}
	if itemID > 0 {
		if kind == ContentAnswer {
			row.AnswerID = &itemID
		} else {
			row.QuestionID = &itemID
		}
	}

	create := tx
	if action == ActionView {
		create = tx.Clauses(clause.OnConflict{DoNothing: true})
	}
	res := create.Create(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return storeErr(res.Error)
	}
	if action == ActionView && res.RowsAffected == 0 {
		return ErrConflict
	}

	if len(tagIDs) == 0 {
		return nil
	}
	snapshot := make([]models.InteractionTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		snapshot = append(snapshot, models.InteractionTag{InteractionID: row.ID, TagID: tagID})
	}
	if err := tx.Create(&snapshot).Error; err != nil {
		return storeErr(err)
	}
	return nil
}
