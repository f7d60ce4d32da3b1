package routes

import (
	"wordduel/api/handlers"
	"wordduel/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func PublicApi(router *gin.Engine, h *handlers.Handler) *gin.RouterGroup {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	publicEndpoints := router.Group("/api/v1/")
	{
		publicEndpoints.POST("user/signup", h.SignUp)

		// Друзья
		publicEndpoints.POST("user/addfriend", h.AddFriend)
		publicEndpoints.POST("user/confirmfriend", h.ConfirmFriend)
		publicEndpoints.GET("user/isfriend", h.IsFriend)
		publicEndpoints.GET("user/:userId/friends", h.ListFriends)
		publicEndpoints.GET("user/:userId/eligible/:targetUserId", h.ChallengeEligibility)
		publicEndpoints.GET("user/:userId/counters", h.Counters)

		// Дуэли
		publicEndpoints.POST("challenge/duel/:duelId/user/:sourceUserId", h.AddChallenge)
		publicEndpoints.POST("challenge/duel/:duelId/attempt", h.AttemptChallenge)
		publicEndpoints.POST("challenge/duel/:duelId/success", h.DuelSuccess)
		publicEndpoints.POST("challenge/duel/:duelId/failure", h.DuelFailure)
		publicEndpoints.GET("challenge/duel/:duelId", h.GetDuel)
		publicEndpoints.GET("challenge/pending/:targetUserId", h.ListPendingDuels)
		publicEndpoints.GET("challenge/:challengeId", h.GetChallenge)

		publicEndpoints.GET("ws", middleware.UserAuthMiddleware(), h.WSHandler)
	}
	return publicEndpoints
}
