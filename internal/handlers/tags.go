package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devoverflow/backend/internal/models"
)

type TagHandler struct {
	db *gorm.DB
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

// GetTags returns tags with their question counts
func (h *TagHandler) GetTags(c *gin.Context) {
	page, pageSize := parsePagination(c, 20)
	if page < 1 || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and page_size must be positive"})
		return
	}

	query := h.db.Model(&models.Tag{})
	if search := c.Query("q"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var tags []models.Tag
	err := query.
		Order("name ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&tags).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	responses := []gin.H{}
	for _, tag := range tags {
		var questionCount int64
		h.db.Table("question_tags").Where("tag_id = ?", tag.ID).Count(&questionCount)
		responses = append(responses, gin.H{
			"id":             tag.ID,
			"name":           tag.Name,
			"description":    tag.Description,
			"question_count": questionCount,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// GetTagQuestions returns the questions carrying a tag, newest first
func (h *TagHandler) GetTagQuestions(c *gin.Context) {
	tagID := c.Param("id")

	var tag models.Tag
	if err := h.db.First(&tag, tagID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	page, pageSize := parsePagination(c, 15)
	if page < 1 || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and page_size must be positive"})
		return
	}

	base := h.db.Model(&models.Question{}).
		Joins("JOIN question_tags ON question_tags.question_id = questions.id").
		Where("question_tags.tag_id = ?", tag.ID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	var questions []models.Question
	err := base.Session(&gorm.Session{}).
		Order("questions.created_at DESC, questions.id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Preload("User").
		Preload("Tags").
		Find(&questions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tag":       tag,
		"questions": questions,
		"has_next":  total > int64(page*pageSize),
	})
}
