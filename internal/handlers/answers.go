package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devoverflow/backend/internal/engine"
	"github.com/devoverflow/backend/internal/models"
)

type AnswerHandler struct {
	db     *gorm.DB
	engine *engine.Engine
}

func NewAnswerHandler(db *gorm.DB, core *engine.Engine) *AnswerHandler {
	return &AnswerHandler{db: db, engine: core}
}

func (h *AnswerHandler) answerResponse(c *gin.Context, answer models.Answer) gin.H {
	up, down, _ := h.engine.VoteCounts(c.Request.Context(), engine.ContentAnswer, answer.ID)

	hasUpvoted, hasDownvoted := false, false
	if userID, ok := extractUserID(c); ok {
		hasUpvoted, hasDownvoted, _ = h.engine.VoteStatus(c.Request.Context(), engine.ContentAnswer, answer.ID, userID)
	}

	return gin.H{
		"id":            answer.ID,
		"content":       answer.Content,
		"author_id":     answer.AuthorID,
		"question_id":   answer.QuestionID,
		"user":          answer.User,
		"upvotes":       up,
		"downvotes":     down,
		"has_upvoted":   hasUpvoted,
		"has_downvoted": hasDownvoted,
		"created_at":    answer.CreatedAt,
		"updated_at":    answer.UpdatedAt,
	}
}

// GetAnswers returns a question's answers with sorting and pagination
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID := c.Param("id")
	page, pageSize := parsePagination(c, 5)
	if page < 1 || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and page_size must be positive"})
		return
	}

	const upvoteCount = "(SELECT COUNT(*) FROM votes WHERE votes.answer_id = answers.id AND votes.vote_type = 1)"

	var order string
	switch c.Query("sort") {
	case "highest_upvotes":
		order = upvoteCount + " DESC, answers.id ASC"
	case "lowest_upvotes":
		order = upvoteCount + " ASC, answers.id ASC"
	case "old":
		order = "answers.created_at ASC, answers.id ASC"
	default: // recent
		order = "answers.created_at DESC, answers.id ASC"
	}

	var total int64
	h.db.Model(&models.Answer{}).Where("question_id = ?", questionID).Count(&total)

	var answers []models.Answer
	err := h.db.
		Where("question_id = ?", questionID).
		Order(order).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Preload("User").
		Find(&answers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch answers"})
		return
	}

	responses := []gin.H{}
	for _, answer := range answers {
		responses = append(responses, h.answerResponse(c, answer))
	}

	c.JSON(http.StatusOK, gin.H{
		"answers":  responses,
		"has_next": total > int64(page*pageSize),
	})
}

// CreateAnswer creates an answer on a question (PROTECTED)
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var input models.CreateAnswerRequest

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questionID := c.Param("id")
	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Verify question exists
	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	answer := models.Answer{
		Content:    input.Content,
		QuestionID: question.ID,
		AuthorID:   authorID,
	}

	if err := h.db.Create(&answer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create answer"})
		return
	}

	// Answer interaction + author bonus
	if err := h.engine.RecordAuthorship(c.Request.Context(), authorID, answer.ID, engine.ContentAnswer); err != nil {
		respondEngineError(c, err)
		return
	}

	h.db.Preload("User").First(&answer, answer.ID)
	c.JSON(http.StatusCreated, h.answerResponse(c, answer))
}

// UpdateAnswer updates an answer (owner only)
func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	answerID := c.Param("answerId")

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var answer models.Answer
	if err := h.db.First(&answer, answerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		return
	}

	if answer.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own answers"})
		return
	}

	answer.Content = input.Content
	h.db.Save(&answer)
	h.db.Preload("User").First(&answer, answer.ID)

	c.JSON(http.StatusOK, h.answerResponse(c, answer))
}

// DeleteAnswer deletes an answer and its votes (owner only)
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	answerID := c.Param("answerId")

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var answer models.Answer
	if err := h.db.First(&answer, answerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		return
	}

	if answer.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own answers"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := engine.PurgeContent(tx, engine.ContentAnswer, answer.ID); err != nil {
			return err
		}
		return tx.Delete(&answer).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete answer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}

// VoteAnswer toggles the caller's vote on an answer (PROTECTED)
func (h *AnswerHandler) VoteAnswer(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("answerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer id"})
		return
	}

	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Direction must be up or down"})
		return
	}
	direction, ok := parseDirection(input.Direction)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Direction must be up or down"})
		return
	}

	result, err := h.engine.Vote(c.Request.Context(), engine.ContentAnswer, answerID, voterID, direction)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
