package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devoverflow/backend/internal/engine"
	"github.com/devoverflow/backend/internal/models"
)

type UserHandler struct {
	db     *gorm.DB
	engine *engine.Engine
}

func NewUserHandler(db *gorm.DB, core *engine.Engine) *UserHandler {
	return &UserHandler{db: db, engine: core}
}

// GetUsers returns users, optionally ordered by reputation
func (h *UserHandler) GetUsers(c *gin.Context) {
	page, pageSize := parsePagination(c, 20)
	if page < 1 || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and page_size must be positive"})
		return
	}

	query := h.db.Model(&models.User{})
	if c.Query("filter") == "top_contributors" {
		query = query.Order("reputation DESC, id ASC")
	} else {
		query = query.Order("created_at DESC, id ASC")
	}

	var users []models.User
	if err := query.Limit(pageSize).Offset((page - 1) * pageSize).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := []gin.H{}
	for _, user := range users {
		responses = append(responses, gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"avatar":     user.Avatar,
			"reputation": user.Reputation,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// GetUserProfile returns a user's profile with reputation and top tags
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID := c.Param("id")
	var user models.User

	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var questionCount, answerCount int64
	h.db.Model(&models.Question{}).Where("author_id = ?", user.ID).Count(&questionCount)
	h.db.Model(&models.Answer{}).Where("author_id = ?", user.ID).Count(&answerCount)

	topTags, err := h.engine.TopTags(c.Request.Context(), user.ID, 10)
	if err != nil {
		topTags = []models.Tag{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"bio":        user.Bio,
			"avatar":     user.Avatar,
			"reputation": user.Reputation,
			"created_at": user.CreatedAt,
		},
		"question_count": questionCount,
		"answer_count":   answerCount,
		"top_tags":       topTags,
	})
}

func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	userID := c.Param("id")

	// Get authenticated user ID from middleware
	authUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Check if user is updating their own profile
	if fmt.Sprintf("%v", authUserID) != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}

	var input struct {
		Bio    string `json:"bio"`
		Avatar string `json:"avatar"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}

	// Save to database
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"bio":        user.Bio,
		"avatar":     user.Avatar,
		"reputation": user.Reputation,
	})
}

// ToggleSaveQuestion bookmarks a question, or removes the bookmark if it
// already exists (PROTECTED)
func (h *UserHandler) ToggleSaveQuestion(c *gin.Context) {
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

	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	var existing models.SavedQuestion
	err = h.db.Where("user_id = ? AND question_id = ?", userID, questionID).First(&existing).Error
	if err == nil {
		h.db.Delete(&existing)
		c.JSON(http.StatusOK, gin.H{"message": "Question unsaved", "saved": false})
		return
	}

	saved := models.SavedQuestion{UserID: userID, QuestionID: questionID}
	if err := h.db.Create(&saved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question saved", "saved": true})
}

// GetSavedQuestions returns the caller's bookmarked questions (PROTECTED)
func (h *UserHandler) GetSavedQuestions(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, pageSize := parsePagination(c, 15)
	if page < 1 || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and page_size must be positive"})
		return
	}

	var total int64
	h.db.Model(&models.SavedQuestion{}).Where("user_id = ?", userID).Count(&total)

	var saved []models.SavedQuestion
	err := h.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Preload("Question").
		Preload("Question.User").
		Preload("Question.Tags").
		Find(&saved).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch saved questions"})
		return
	}

	responses := []gin.H{}
	for _, s := range saved {
		responses = append(responses, gin.H{
			"id":         s.Question.ID,
			"title":      s.Question.Title,
			"content":    s.Question.Content,
			"author_id":  s.Question.AuthorID,
			"user":       s.Question.User,
			"tags":       s.Question.Tags,
			"views":      s.Question.Views,
			"created_at": s.Question.CreatedAt,
			"saved_at":   s.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": responses,
		"has_next":  total > int64(page*pageSize),
	})
}
