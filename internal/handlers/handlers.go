package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devoverflow/backend/internal/database"
	"github.com/devoverflow/backend/internal/engine"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	Question *QuestionHandler
	Answer   *AnswerHandler
	User     *UserHandler
	Tag      *TagHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *database.Database) *Handler {
	// Get the GORM DB instance from the service
	dbService := database.New()
	gormDB := dbService.GetDB()
	core := engine.New(gormDB)

	return &Handler{
		Auth:     NewAuthHandler(gormDB),
		Question: NewQuestionHandler(gormDB, core),
		Answer:   NewAnswerHandler(gormDB, core),
		User:     NewUserHandler(gormDB, core),
		Tag:      NewTagHandler(gormDB),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// respondEngineError maps the engine's error taxonomy to HTTP statuses.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, engine.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflicting update, please try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
