package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// top 10 players by wins*3 + draws
func (h *Handler) Leaderboard(c *gin.Context) {
	top, err := h.Accounts.Leaderboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}
	c.JSON(http.StatusOK, top)
}
