package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/openboard/backend/internal/engine"
	"github.com/openboard/backend/internal/middleware"
	"github.com/openboard/backend/internal/models"
)

type AuthHandler struct {
	eng *engine.Engine
}

func NewAuthHandler(eng *engine.Engine) *AuthHandler {
	return &AuthHandler{eng: eng}
}

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

func signToken(profile models.UserProfile) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":          profile.UID,
		"display_name": profile.DisplayName,
		"email":        profile.Email,
		"exp":          time.Now().Add(72 * time.Hour).Unix(),
	})
	return token.SignedString(jwtSecret)
}

func profileView(profile models.UserProfile) gin.H {
	return gin.H{
		"uid":         profile.UID,
		"email":       profile.Email,
		"displayName": profile.DisplayName,
		"photoURL":    profile.PhotoURL,
		"bio":         profile.Bio,
		"joinDate":    profile.JoinDate,
	}
}

// Register handles email/password registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	profile, err := h.eng.RegisterProfile(c.Request.Context(), input.DisplayName, input.Email, string(hashed))
	if err != nil {
		respondError(c, err)
		return
	}

	tokenString, err := signToken(profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   tokenString,
		"user":    profileView(profile),
	})
}

// Login handles email/password login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.eng.ProfileByEmail(c.Request.Context(), input.Email)
	if err != nil || profile.PasswordHash == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := signToken(profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   tokenString,
		"user":    profileView(profile),
	})
}

// GetMe returns the current authenticated user's profile, creating it on
// first sign-in.
func (h *AuthHandler) GetMe(c *gin.Context) {
	ident := middleware.IdentityFrom(c)

	profile, err := h.eng.SyncProfile(c.Request.Context(), ident)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileView(profile))
}
