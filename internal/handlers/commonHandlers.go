package handlers

import (
	"net/http"

	"chessgame/internal/database"
	"chessgame/internal/utils"
)

type CommonHandler struct {
	db database.Service
}

func NewCommonHandler(db database.Service) *CommonHandler {
	return &CommonHandler{db: db}
}

func (h *CommonHandler) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

// HealthHandler reports 503 when the database ping fails.
func (h *CommonHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	stats := h.db.Health()
	status := http.StatusOK
	if _, down := stats["error"]; down {
		status = http.StatusServiceUnavailable
	}
	utils.RespondWithJSON(w, status, stats)
}
