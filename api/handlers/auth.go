package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"wordduel/services"

	"github.com/gin-gonic/gin"
)

type SignUpRequest struct {
	Email     string `json:"email" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Password  string `json:"password" binding:"required"`
	AppUserID string `json:"appUserId"`
}

// SignUp - регистрация пользователя
func (h *Handler) SignUp(c *gin.Context) {
	start := time.Now()
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not sufficient for user creation", "details": err.Error()})
		return
	}

	userID, code, err := h.game.SignUp(c.Request.Context(), services.ProfileInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.Name,
		AppUserID:   req.AppUserID,
	})
	observe("signup", start, code.String())

	switch code {
	case services.ResultOK:
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "message": "User created Ok"})
	case services.ResultRejected:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.ResultConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		var creationErr *services.CreationError
		if errors.As(err, &creationErr) {
			log.Printf("Signup failed: %v", creationErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not created"})
	}
}
