package handlers

import (
	"errors"
	"net/http"

	"tictactoe_server/internal/logger"
	"tictactoe_server/internal/service"

	"github.com/gin-gonic/gin"
)

// latest games of the current user
func (h *Handler) GameHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	games, err := h.History.Recent(c.Request.Context(), userID)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("history failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *Handler) GameSession(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID := c.Param("sessionId")
	detail, err := h.History.Session(c.Request.Context(), userID, sessionID)
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("session lookup failed", "session_id", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch session"})
		return
	}
	c.JSON(http.StatusOK, detail)
}
