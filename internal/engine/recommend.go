package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/devoverflow/backend/internal/models"
)

// RecommendResult is one page of recommended questions.
type RecommendResult struct {
	Questions []models.Question `json:"questions"`
	HasNext   bool              `json:"has_next"`
}

// TagAffinity returns the user's interaction count per tag id, folded over
// the tag snapshots of their whole interaction history.
func (e *Engine) TagAffinity(ctx context.Context, userID int) (map[int]int, error) {
	var rows []struct {
		TagID int
		N     int
	}
	err := e.db.WithContext(ctx).
		Model(&models.InteractionTag{}).
		Select("interaction_tags.tag_id AS tag_id, COUNT(*) AS n").
		Joins("JOIN interactions ON interactions.id = interaction_tags.interaction_id").
		Where("interactions.user_id = ?", userID).
		Group("interaction_tags.tag_id").
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}

	affinity := make(map[int]int, len(rows))
	for _, row := range rows {
		affinity[row.TagID] = row.N
	}
	return affinity, nil
}

// TopTags returns the user's most-interacted tags, strongest first.
func (e *Engine) TopTags(ctx context.Context, userID, limit int) ([]models.Tag, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1", ErrValidation)
	}

	affinity, err := e.TagAffinity(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(affinity) == 0 {
		return []models.Tag{}, nil
	}

	ids := make([]int, 0, len(affinity))
	for id := range affinity {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if affinity[ids[i]] != affinity[ids[j]] {
			return affinity[ids[i]] > affinity[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}

	var tags []models.Tag
	if err := e.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, storeErr(err)
	}

	// Find returns in id order; restore affinity order.
	byID := make(map[int]models.Tag, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
	}
	ordered := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		if tag, ok := byID[id]; ok {
			ordered = append(ordered, tag)
		}
	}
	return ordered, nil
}

// Recommend ranks questions the user has not authored whose tags intersect
// the user's tag affinity, newest first (ties broken by id), paginated.
// An empty affinity is an empty result, not an error: absence of signal
// means absence of personalization, with no popularity fallback.
func (e *Engine) Recommend(ctx context.Context, userID int, searchQuery string, page, pageSize int) (RecommendResult, error) {
	if userID <= 0 {
		return RecommendResult{}, ErrUnauthenticated
	}
	if page < 1 {
		return RecommendResult{}, fmt.Errorf("%w: page must be >= 1", ErrValidation)
	}
	if pageSize < 1 {
		return RecommendResult{}, fmt.Errorf("%w: page size must be >= 1", ErrValidation)
	}

	affinity, err := e.TagAffinity(ctx, userID)
	if err != nil {
		return RecommendResult{}, err
	}
	if len(affinity) == 0 {
		return RecommendResult{Questions: []models.Question{}}, nil
	}

	tagIDs := make([]int, 0, len(affinity))
	for id := range affinity {
		tagIDs = append(tagIDs, id)
	}

	base := e.db.WithContext(ctx).
		Model(&models.Question{}).
		Joins("JOIN question_tags ON question_tags.question_id = questions.id").
		Where("question_tags.tag_id IN ?", tagIDs).
		Where("questions.author_id <> ?", userID)

	if searchQuery != "" {
		pattern := "%" + strings.ToLower(searchQuery) + "%"
		base = base.Where("LOWER(questions.title) LIKE ? OR LOWER(questions.content) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Distinct("questions.id").Count(&total).Error; err != nil {
		return RecommendResult{}, storeErr(err)
	}

	questions := []models.Question{}
	err = base.Session(&gorm.Session{}).
		Distinct("questions.*").
		Order("questions.created_at DESC, questions.id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Preload("User").
		Preload("Tags").
		Find(&questions).Error
	if err != nil {
		return RecommendResult{}, storeErr(err)
	}

	return RecommendResult{
		Questions: questions,
		HasNext:   total > int64(page*pageSize),
	}, nil
}
