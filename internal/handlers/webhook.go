package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"relay-service/internal/observability"
	"relay-service/internal/platform"
	"relay-service/internal/relay"
)

// UpdateHandler processes one platform update. *relay.Engine implements it.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd platform.Update) relay.Outcome
}

// WebhookHandler receives updates pushed by the platform.
type WebhookHandler struct {
	relay UpdateHandler
}

func NewWebhookHandler(engine UpdateHandler) *WebhookHandler {
	return &WebhookHandler{relay: engine}
}

// Receive decodes an update and runs it through the relay. Once decoded, an
// update is always acknowledged so the platform does not redeliver it.
func (h *WebhookHandler) Receive(c *gin.Context) {
	requestID := requestIDFromContext(c)

	var upd platform.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		log.Warn().Err(err).
			Str("request_id", requestID).
			Str("remote_ip", observability.IPFromRequest(c.Request)).
			Msg("Malformed update rejected.")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}

	// The relay outlives the request: a dropped connection must not cut a fan-out short.
	out := h.relay.HandleUpdate(context.WithoutCancel(c.Request.Context()), upd)
	log.Debug().
		Str("request_id", requestID).
		Int("update_id", upd.UpdateID).
		Str("operation", string(out.Operation)).
		Bool("success", out.Success).
		Msg("Update handled.")

	c.JSON(http.StatusOK, gin.H{"ok": true, "operation": out.Operation, "success": out.Success})
}
