package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"relay-service/internal/repositories"
)

// ChatHandler exposes the chat directory to operators.
type ChatHandler struct {
	chatRepo repositories.ChatRepository
	botID    int64
}

func NewChatHandler(chatRepo repositories.ChatRepository, botID int64) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, botID: botID}
}

type authorizationRequest struct {
	Authorized *bool `json:"authorized" binding:"required"`
}

// GetChat returns one directory entry.
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	chat, err := h.chatRepo.GetChat(c.Request.Context(), chatID, h.botID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// SetAuthorization admits a chat to the relay or removes it.
func (h *ChatHandler) SetAuthorization(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	var req authorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.chatRepo.SetAuthorized(c.Request.Context(), chatID, h.botID, *req.Authorized); err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "authorized": *req.Authorized})
}

// ListRecipients returns the chats a broadcast would currently reach.
func (h *ChatHandler) ListRecipients(c *gin.Context) {
	ids, err := h.chatRepo.ActiveRecipients(c.Request.Context(), h.botID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recipients"})
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"recipients": ids})
}
