package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/devoverflow/backend/internal/database"
	"github.com/devoverflow/backend/internal/handlers"
	"github.com/devoverflow/backend/internal/middleware"
)

type Server struct {
	db      *database.Database
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	// Create unified handler
	handler := handlers.NewHandler(db)

	// Create server instance
	newServer := &Server{
		db:      db,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Question routes (public reads)
		api.GET("/questions", s.handler.Question.GetQuestions)
		api.GET("/questions/hot", s.handler.Question.GetHotQuestions)
		api.GET("/questions/:id", s.handler.Question.GetQuestion)

		// Answer routes (public reads)
		api.GET("/questions/:id/answers", s.handler.Answer.GetAnswers)

		// Tag routes (public reads)
		api.GET("/tags", s.handler.Tag.GetTags)
		api.GET("/tags/:id/questions", s.handler.Tag.GetTagQuestions)

		// User routes (public reads)
		api.GET("/users", s.handler.User.GetUsers)
		api.GET("/users/:id", s.handler.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth protected routes
			protected.GET("/me", s.handler.Auth.GetMe)

			// Question protected routes
			protected.POST("/questions", s.handler.Question.CreateQuestion)
			protected.PUT("/questions/:id", s.handler.Question.UpdateQuestion)
			protected.DELETE("/questions/:id", s.handler.Question.DeleteQuestion)
			protected.POST("/questions/:id/vote", s.handler.Question.VoteQuestion)
			protected.POST("/questions/:id/view", s.handler.Question.ViewQuestion)
			protected.POST("/questions/:id/save", s.handler.User.ToggleSaveQuestion)

			// Answer protected routes
			protected.POST("/questions/:id/answers", s.handler.Answer.CreateAnswer)
			protected.PUT("/answers/:answerId", s.handler.Answer.UpdateAnswer)
			protected.DELETE("/answers/:answerId", s.handler.Answer.DeleteAnswer)
			protected.POST("/answers/:answerId/vote", s.handler.Answer.VoteAnswer)

			// Recommendation routes
			protected.GET("/recommended", s.handler.Question.GetRecommended)
			protected.GET("/collection", s.handler.User.GetSavedQuestions)

			// User protected routes
			protected.PUT("/users/:id", s.handler.User.UpdateUserProfile)
		}
	}

	return r
}
