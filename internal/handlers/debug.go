package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"relay-service/internal/archive"
	"relay-service/internal/repositories"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, transmissions repositories.TransmissionRepository, payloads archive.Reader, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/transmissions/:id/ancestry", func(c *gin.Context) {
		chain, truncated, err := repositories.Ancestry(c.Request.Context(), transmissions, c.Param("id"))
		if err != nil {
			if errors.Is(err, repositories.ErrTransmissionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "transmission not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ancestry"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"request_id": requestIDFromContext(c), "chain": chain, "truncated": truncated})
	})

	// refs contain slashes, so the whole tail of the path is the ref
	router.GET("/debug/payloads/*ref", func(c *gin.Context) {
		ref := strings.TrimPrefix(c.Param("ref"), "/")
		raw, err := payloads.Get(c.Request.Context(), ref)
		if err != nil {
			if errors.Is(err, archive.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "payload not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payload"})
			return
		}
		c.Data(http.StatusOK, "application/json", raw)
	})
}
