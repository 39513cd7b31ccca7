package handlers

import (
	"errors"
	"net/http"

	"tictactoe_server/internal/logger"
	"tictactoe_server/internal/service"

	"github.com/gin-gonic/gin"
)

type purchaseRequest struct {
	ItemID int64 `json:"itemId"`
}

func (h *Handler) StoreItems(c *gin.Context) {
	items, err := h.Store.Items(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch store items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, balance, err := h.Store.Purchase(c.Request.Context(), userID, req.ItemID, requestMeta(c))
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	case errors.Is(err, service.ErrInsufficientCoins):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient coins"})
		return
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	case err != nil:
		logger.WithContext(c.Request.Context()).Error("purchase failed", "user_id", userID, "item_id", req.ItemID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Purchase failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Purchase successful",
		"newBalance": balance,
	})
}
