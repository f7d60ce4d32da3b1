package handlers

import (
	"net/http"
	"time"

	"wordduel/models"

	"github.com/gin-gonic/gin"
)

type addChallengeRequest struct {
	Question *models.Question `json:"question"`
}

// AddChallenge - вызов в дуэли от :sourceUserId
func (h *Handler) AddChallenge(c *gin.Context) {
	start := time.Now()
	var r addChallengeRequest
	if err := c.ShouldBindJSON(&r); err != nil || r.Question == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid challenge data not found"})
		return
	}
	ok := h.game.UpdateDuel(c.Request.Context(), models.DuelUpdateRequest{
		DuelID: c.Param("duelId"),
		Event:  models.EventChallenge,
		Challenge: &models.Challenge{
			SourceUserID: c.Param("sourceUserId"),
			Question:     r.Question,
		},
	})
	observe(string(models.EventChallenge), start, boolResult(ok))
	respondTransition(c, ok)
}

func (h *Handler) AttemptChallenge(c *gin.Context) {
	h.transition(c, models.EventAttempt)
}

func (h *Handler) DuelSuccess(c *gin.Context) {
	h.transition(c, models.EventSuccess)
}

func (h *Handler) DuelFailure(c *gin.Context) {
	h.transition(c, models.EventFailure)
}

func (h *Handler) transition(c *gin.Context, event models.DuelEvent) {
	start := time.Now()
	ok := h.game.UpdateDuel(c.Request.Context(), models.DuelUpdateRequest{
		DuelID: c.Param("duelId"),
		Event:  event,
	})
	observe(string(event), start, boolResult(ok))
	respondTransition(c, ok)
}

func respondTransition(c *gin.Context, ok bool) {
	if ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "duel not updated"})
}

// GetDuel - состояние дуэли; 204, если её нет
func (h *Handler) GetDuel(c *gin.Context) {
	duel, found := h.game.GetDuel(c.Request.Context(), c.Param("duelId"))
	if !found {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, duel)
}

// GetChallenge - вопрос вызова
func (h *Handler) GetChallenge(c *gin.Context) {
	challenge, found := h.game.GetChallenge(c.Request.Context(), c.Param("challengeId"))
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "challenge not found"})
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// ListPendingDuels - дуэли, ждущие ответа пользователя
func (h *Handler) ListPendingDuels(c *gin.Context) {
	duels, found := h.game.ListPendingDuels(c.Request.Context(), c.Param("targetUserId"))
	if !found || len(duels) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no pending duels"})
		return
	}
	c.JSON(http.StatusOK, duels)
}
