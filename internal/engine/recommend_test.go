package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devoverflow/backend/internal/engine"
	"github.com/devoverflow/backend/internal/models"
)

func questionIDs(questions []models.Question) []int {
	ids := make([]int, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}

func TestRecommendByTagAffinity(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	reader := newUser(t)
	goTag := newTag(t, "go")
	rustTag := newTag(t, "rust")
	otherTag := newTag(t, "cobol")

	seed := newQuestion(t, author, "seed question", goTag)
	require.NoError(t, core.RecordView(ctx, seed.ID, reader.ID))

	matchingGo := newQuestion(t, author, "another go question", goTag)
	matchingRust := newQuestion(t, author, "a rust question", rustTag)
	unrelated := newQuestion(t, author, "a cobol question", otherTag)
	ownQuestion := newQuestion(t, reader, "reader's own go question", goTag)

	// The reader has only touched the go tag so far.
	result, err := core.Recommend(ctx, reader.ID, "", 1, 10)
	require.NoError(t, err)
	ids := questionIDs(result.Questions)
	assert.Contains(t, ids, seed.ID)
	assert.Contains(t, ids, matchingGo.ID)
	assert.NotContains(t, ids, matchingRust.ID)
	assert.NotContains(t, ids, unrelated.ID)
	assert.NotContains(t, ids, ownQuestion.ID, "never recommend the user's own content")

	// Touching rust widens the candidate set.
	require.NoError(t, core.RecordView(ctx, matchingRust.ID, reader.ID))
	result, err = core.Recommend(ctx, reader.ID, "", 1, 10)
	require.NoError(t, err)
	assert.Contains(t, questionIDs(result.Questions), matchingRust.ID)
}

func TestRecommendNewestFirst(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	reader := newUser(t)
	tag := newTag(t, "orderby")

	first := newQuestion(t, author, "oldest", tag)
	second := newQuestion(t, author, "middle", tag)
	third := newQuestion(t, author, "newest", tag)
	require.NoError(t, core.RecordView(ctx, first.ID, reader.ID))

	result, err := core.Recommend(ctx, reader.ID, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, result.Questions, 3)

	ids := questionIDs(result.Questions)
	assert.Equal(t, []int{third.ID, second.ID, first.ID}, ids)
	assert.False(t, result.HasNext)
}

func TestRecommendEmptyAffinity(t *testing.T) {
	core := newEngine()

	reader := newUser(t)
	result, err := core.Recommend(context.Background(), reader.ID, "", 1, 5)
	require.NoError(t, err)
	assert.Empty(t, result.Questions)
	assert.False(t, result.HasNext)
}

func TestRecommendValidation(t *testing.T) {
	core := newEngine()
	ctx := context.Background()
	reader := newUser(t)

	_, err := core.Recommend(ctx, reader.ID, "", 0, 5)
	assert.ErrorIs(t, err, engine.ErrValidation)

	_, err = core.Recommend(ctx, reader.ID, "", 1, 0)
	assert.ErrorIs(t, err, engine.ErrValidation)

	_, err = core.Recommend(ctx, 0, "", 1, 5)
	assert.ErrorIs(t, err, engine.ErrUnauthenticated)
}

func TestRecommendSearchFilter(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	reader := newUser(t)
	tag := newTag(t, "search")

	generics := newQuestion(t, author, "How do Generics work?", tag)
	channels := newQuestion(t, author, "Buffered channels", tag)
	require.NoError(t, core.RecordView(ctx, generics.ID, reader.ID))

	result, err := core.Recommend(ctx, reader.ID, "generics", 1, 10)
	require.NoError(t, err)
	ids := questionIDs(result.Questions)
	assert.Contains(t, ids, generics.ID, "substring match is case-insensitive")
	assert.NotContains(t, ids, channels.ID)
}

func TestRecommendPaginationConsistency(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	reader := newUser(t)
	tag := newTag(t, "paging")

	const total = 7
	questions := make([]models.Question, total)
	for i := range questions {
		questions[i] = newQuestion(t, author, "paged question", tag)
	}
	require.NoError(t, core.RecordView(ctx, questions[0].ID, reader.ID))

	const pageSize = 3
	var paged []int
	for page := 1; ; page++ {
		result, err := core.Recommend(ctx, reader.ID, "", page, pageSize)
		require.NoError(t, err)
		paged = append(paged, questionIDs(result.Questions)...)
		if !result.HasNext {
			break
		}
		assert.Len(t, result.Questions, pageSize, "full page expected when has_next is set")
	}

	all, err := core.Recommend(ctx, reader.ID, "", 1, total)
	require.NoError(t, err)
	assert.Equal(t, questionIDs(all.Questions), paged,
		"concatenated pages must equal one large page, in order, without duplicates")
	assert.False(t, all.HasNext)

	seen := map[int]bool{}
	for _, id := range paged {
		assert.False(t, seen[id], "duplicate id %d across pages", id)
		seen[id] = true
	}
	assert.Len(t, paged, total)
}

func TestTopTagsOrderedByAffinity(t *testing.T) {
	core := newEngine()
	ctx := context.Background()

	author := newUser(t)
	reader := newUser(t)
	goTag := newTag(t, "go")
	rustTag := newTag(t, "rust")

	goQ1 := newQuestion(t, author, "top tags go 1", goTag)
	goQ2 := newQuestion(t, author, "top tags go 2", goTag)
	rustQ := newQuestion(t, author, "top tags rust", rustTag)

	require.NoError(t, core.RecordView(ctx, goQ1.ID, reader.ID))
	require.NoError(t, core.RecordView(ctx, goQ2.ID, reader.ID))
	require.NoError(t, core.RecordView(ctx, rustQ.ID, reader.ID))

	tags, err := core.TopTags(ctx, reader.ID, 10)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, goTag.ID, tags[0].ID)
	assert.Equal(t, rustTag.ID, tags[1].ID)

	tags, err = core.TopTags(ctx, reader.ID, 1)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, goTag.ID, tags[0].ID)

	_, err = core.TopTags(ctx, reader.ID, 0)
	assert.ErrorIs(t, err, engine.ErrValidation)
}
