package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/openboard/backend/internal/engine"
	"github.com/openboard/backend/internal/handlers"
	"github.com/openboard/backend/internal/middleware"
)

type Server struct {
	handler *handlers.Handler
}

// NewServer creates and configures a new server around the engine
func NewServer(eng *engine.Engine) *http.Server {
	newServer := &Server{
		handler: handlers.NewHandler(eng),
	}

	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	return &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
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

		// Public reads; identity is picked up when present so scoped feeds
		// and own-rating lookups work
		public := api.Group("")
		public.Use(middleware.OptionalAuth())
		{
			public.GET("/posts", s.handler.Post.GetPosts)
			public.GET("/posts/trending", s.handler.Post.GetTrending)
			public.GET("/posts/:id", s.handler.Post.GetPost)
			public.GET("/posts/:id/comments", s.handler.Comment.GetComments)
			public.GET("/posts/:id/stats", s.handler.Comment.GetStats)
			public.GET("/posts/:id/rating", s.handler.Rating.GetRating)
			public.GET("/users/:id", s.handler.User.GetUserProfile)
			public.GET("/users/:id/posts", s.handler.Post.GetUserPosts)
		}

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.POST("/posts/:id/view", s.handler.Post.RecordView)

			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)
			protected.DELETE("/comments/:id", s.handler.Comment.DeleteComment)
			protected.POST("/comments/:id/like", s.handler.Comment.LikeComment)
			protected.POST("/comments/:id/replies", s.handler.Comment.CreateReply)
			protected.POST("/comments/:id/replies/like", s.handler.Comment.LikeReply)

			protected.PUT("/posts/:id/rating", s.handler.Rating.SetRating)

			protected.PUT("/users/:id/bio", s.handler.User.UpdateBio)
			protected.POST("/users/:id/follow", s.handler.User.FollowUser)
			protected.DELETE("/users/:id/follow", s.handler.User.UnfollowUser)
		}
	}

	return r
}
