package handlers

import (
	"net/http"
	"time"

	"wordduel/models"
	"wordduel/services"

	"github.com/gin-gonic/gin"
)

type friendRequest struct {
	SourceUserID string `json:"sourceUserId" binding:"required"`
	TargetUserID string `json:"targetUserId" binding:"required"`
}

func resultStatus(code services.ResultCode) int {
	switch code {
	case services.ResultOK:
		return http.StatusOK
	case services.ResultRejected:
		return http.StatusBadRequest
	case services.ResultConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// AddFriend - заявка в друзья, заодно заводит дуэль пары
func (h *Handler) AddFriend(c *gin.Context) {
	start := time.Now()
	var r friendRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result := h.game.AddFriend(c.Request.Context(), r.SourceUserID, r.TargetUserID)
	observe("addfriend", start, result.Code.String())

	if result.Code == services.ResultOK {
		c.JSON(http.StatusOK, gin.H{"message": "Friends created Ok"})
		return
	}
	c.JSON(resultStatus(result.Code), gin.H{"error": result.Message})
}

// ConfirmFriend - подтверждение дружбы
func (h *Handler) ConfirmFriend(c *gin.Context) {
	start := time.Now()
	var r friendRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result := h.game.ConfirmFriend(c.Request.Context(), r.SourceUserID, r.TargetUserID)
	observe("confirmfriend", start, result.Code.String())

	if result.Code == services.ResultOK {
		c.JSON(http.StatusOK, gin.H{"friendStatus": models.FriendConfirmed})
		return
	}
	c.JSON(resultStatus(result.Code), gin.H{"error": "update failed"})
}

// IsFriend - есть ли запись дружбы source -> target
func (h *Handler) IsFriend(c *gin.Context) {
	sourceUserID := c.Query("sourceUserId")
	targetUserID := c.Query("targetUserId")
	if sourceUserID == "" || targetUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourceUserId and targetUserId are required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friend": h.game.IsFriend(c.Request.Context(), sourceUserID, targetUserID)})
}

// ListFriends - друзья пользователя по статусу, по умолчанию подтверждённые
func (h *Handler) ListFriends(c *gin.Context) {
	status := models.FriendStatus(c.DefaultQuery("status", string(models.FriendConfirmed)))
	friends, code := h.game.ListFriendsByStatus(c.Request.Context(), c.Param("userId"), status)
	if code != services.ResultOK {
		c.JSON(resultStatus(code), gin.H{"error": "friends not listed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// ChallengeEligibility - может ли пользователь бросить вызов другу, и счёт пары
func (h *Handler) ChallengeEligibility(c *gin.Context) {
	status, found := h.game.ChallengeStatus(c.Request.Context(), c.Param("userId"), c.Param("targetUserId"))
	if !found {
		c.JSON(http.StatusOK, gin.H{"eligible": false})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Counters - счетчики игрока: ждущие вызовы, сыгранные и выигранные раунды
func (h *Handler) Counters(c *gin.Context) {
	counters, code := h.game.GetCounters(c.Request.Context(), c.Param("userId"))
	switch code {
	case services.ResultOK:
		c.JSON(http.StatusOK, gin.H{"counters": counters})
	case services.ResultRejected:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "counters are disabled"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "counters not available"})
	}
}
