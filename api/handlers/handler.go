package handlers

import (
	"time"

	"wordduel/api/middleware"
	"wordduel/services"
)

const serviceName = "wordduel"

// Handler - HTTP обработчики поверх GameService
type Handler struct {
	game *services.GameService
	ws   *services.WSConnManager
}

func NewHandler(game *services.GameService, ws *services.WSConnManager) *Handler {
	return &Handler{game: game, ws: ws}
}

func observe(operation string, start time.Time, result string) {
	middleware.RecordDuelOperation(operation, result, serviceName, time.Since(start))
}

func boolResult(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
