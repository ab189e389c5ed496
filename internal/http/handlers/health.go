package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/apns-backend/internal/data/db"
)

type HealthHandler struct {
	status *db.Status
}

func NewHealthHandler(status *db.Status) *HealthHandler {
	return &HealthHandler{status: status}
}

type HealthResponse struct {
	OK          bool    `json:"ok"`
	DBConnected bool    `json:"dbConnected"`
	Mode        string  `json:"mode"`
	DBError     *string `json:"dbError"`
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "APNS Backend API"})
}

// HealthCheck always answers 200; degraded storage shows up in the body.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		OK:          true,
		DBConnected: h.status.Connected(),
		Mode:        h.status.Mode(),
	}
	if msg := h.status.LastError(); msg != "" {
		resp.DBError = &msg
	}
	c.JSON(http.StatusOK, resp)
}
