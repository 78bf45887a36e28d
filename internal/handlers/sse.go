package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/sse"
)

type SSEHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewSSEHandler(baseLog *logger.Logger, hub *sse.Hub) *SSEHandler {
	return &SSEHandler{
		log: baseLog.With("handler", "SSEHandler"),
		hub: hub,
	}
}

// Stream subscribes the caller to the management channel and holds the
// connection open until the client goes away.
func (h *SSEHandler) Stream(c *gin.Context) {
	client := h.hub.NewClient()
	h.hub.AddChannel(client, sse.ChannelManagement)
	defer h.hub.CloseClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
