package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devoverflow/backend/internal/engine"
	"github.com/devoverflow/backend/internal/models"
)

type QuestionHandler struct {
	db     *gorm.DB
	engine *engine.Engine
}

func NewQuestionHandler(db *gorm.DB, core *engine.Engine) *QuestionHandler {
	return &QuestionHandler{db: db, engine: core}
}

func parsePagination(c *gin.Context, defaultSize int) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	return page, pageSize
}

func parseDirection(raw string) (engine.Direction, bool) {
	switch strings.ToLower(raw) {
	case "up":
		return engine.DirectionUp, true
	case "down":
		return engine.DirectionDown, true
	default:
		return 0, false
	}
}

func (h *QuestionHandler) questionResponse(c *gin.Context, question models.Question) gin.H {
	up, down, _ := h.engine.VoteCounts(c.Request.Context(), engine.ContentQuestion, question.ID)

	var answerCount int64
	h.db.Model(&models.Answer{}).Where("question_id = ?", question.ID).Count(&answerCount)

	hasUpvoted, hasDownvoted := false, false
	if userID, ok := extractUserID(c); ok {
		hasUpvoted, hasDownvoted, _ = h.engine.VoteStatus(c.Request.Context(), engine.ContentQuestion, question.ID, userID)
	}

	return gin.H{
		"id":            question.ID,
		"title":         question.Title,
		"content":       question.Content,
		"author_id":     question.AuthorID,
		"user":          question.User,
		"tags":          question.Tags,
		"views":         question.Views,
		"answers":       answerCount,
		"upvotes":       up,
		"downvotes":     down,
		"has_upvoted":   hasUpvoted,
		"has_downvoted": hasDownvoted,
		"created_at":    question.CreatedAt,
		"updated_at":    question.UpdatedAt,
	}
}

// GetQuestions returns questions with search, filter and pagination
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	page, pageSize := parsePagination(c, 15)
	if page < 1 || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and page_size must be positive"})
		return
	}

	query := h.db.Model(&models.Question{})

	if search := c.Query("q"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	}

	switch c.Query("filter") {
	case "frequent":
		query = query.Order("views DESC, id ASC")
	case "unanswered":
		query = query.
			Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id)").
			Order("created_at DESC, id ASC")
	default:
		query = query.Order("created_at DESC, id ASC")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	var questions []models.Question
	err := query.
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Preload("User").
		Preload("Tags").
		Find(&questions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	responses := []gin.H{}
	for _, question := range questions {
		responses = append(responses, h.questionResponse(c, question))
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": responses,
		"has_next":  total > int64(page*pageSize),
	})
}

// GetQuestion returns a single question by ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.Param("id")
	var question models.Question

	if err := h.db.Preload("User").Preload("Tags").First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	c.JSON(http.StatusOK, h.questionResponse(c, question))
}

// GetHotQuestions returns the most viewed questions
func (h *QuestionHandler) GetHotQuestions(c *gin.Context) {
	var questions []models.Question

	err := h.db.
		Order("views DESC, (SELECT COUNT(*) FROM votes WHERE votes.question_id = questions.id AND votes.vote_type = 1) DESC").
		Limit(4).
		Preload("User").
		Preload("Tags").
		Find(&questions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hot questions"})
		return
	}

	responses := []gin.H{}
	for _, question := range questions {
		responses = append(responses, h.questionResponse(c, question))
	}

	c.JSON(http.StatusOK, responses)
}

// CreateQuestion creates a question with its tags (PROTECTED)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input models.CreateQuestionRequest

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	question := models.Question{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: authorID,
	}

	for _, name := range input.Tags {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		var tag models.Tag
		if err := h.db.Where("name = ?", name).First(&tag).Error; err != nil {
			tag = models.Tag{Name: name}
			if err := h.db.Create(&tag).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
				return
			}
		}
		question.Tags = append(question.Tags, tag)
	}

	if err := h.db.Create(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
		return
	}

	// Ask interaction + author bonus
	if err := h.engine.RecordAuthorship(c.Request.Context(), authorID, question.ID, engine.ContentQuestion); err != nil {
		respondEngineError(c, err)
		return
	}

	h.db.Preload("User").Preload("Tags").First(&question, question.ID)
	c.JSON(http.StatusCreated, h.questionResponse(c, question))
}

// UpdateQuestion updates a question (PROTECTED - requires ownership)
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.Param("id")

	currentUserID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	if question.AuthorID != currentUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own questions"})
		return
	}

	if input.Title != "" {
		question.Title = input.Title
	}
	if input.Content != "" {
		question.Content = input.Content
	}

	h.db.Save(&question)
	h.db.Preload("User").Preload("Tags").First(&question, question.ID)

	c.JSON(http.StatusOK, h.questionResponse(c, question))
}

// DeleteQuestion deletes a question with its answers, votes and
// interactions (PROTECTED - requires ownership)
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.Param("id")

	currentUserID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	if question.AuthorID != currentUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own questions"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var answerIDs []int
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", question.ID).Pluck("id", &answerIDs).Error; err != nil {
			return err
		}
		for _, answerID := range answerIDs {
			if err := engine.PurgeContent(tx, engine.ContentAnswer, answerID); err != nil {
				return err
			}
		}
		if len(answerIDs) > 0 {
			if err := tx.Where("question_id = ?", question.ID).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}
		if err := engine.PurgeContent(tx, engine.ContentQuestion, question.ID); err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.SavedQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&question).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// VoteQuestion toggles the caller's vote on a question (PROTECTED)
func (h *QuestionHandler) VoteQuestion(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question id"})
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

	result, err := h.engine.Vote(c.Request.Context(), engine.ContentQuestion, questionID, voterID, direction)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ViewQuestion records a view on a question (PROTECTED, idempotent)
func (h *QuestionHandler) ViewQuestion(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question id"})
		return
	}

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.engine.RecordView(c.Request.Context(), questionID, userID); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "View recorded"})
}

// GetRecommended returns questions ranked by the caller's tag affinity
// (PROTECTED)
func (h *QuestionHandler) GetRecommended(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, pageSize := parsePagination(c, 20)

	result, err := h.engine.Recommend(c.Request.Context(), userID, c.Query("q"), page, pageSize)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	responses := []gin.H{}
	for _, question := range result.Questions {
		responses = append(responses, h.questionResponse(c, question))
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": responses,
		"has_next":  result.HasNext,
	})
}
