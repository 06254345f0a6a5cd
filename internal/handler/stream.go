package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"copydesk/internal/notify"
)

const streamWriteTimeout = 10 * time.Second

// StreamHandler serves the push-update websocket. Clients subscribe to
// change topics and treat every event as a hint to re-fetch; missing an
// event only delays the next render until the following one.
type StreamHandler struct {
	Hub    *notify.Hub
	Logger *zap.Logger
}

func (h *StreamHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/stream", h.stream)
}

// @Summary Push-update stream of change events
// @Tags stream
// @Param topics query string false "comma separated topics, empty means all"
// @Router /api/v1/stream [get]
func (h *StreamHandler) stream(c *gin.Context) {
	if h.Hub == nil {
		Error(c, http.StatusInternalServerError, "hub unavailable", nil)
		return
	}
	topics := splitTopics(c.Query("topics"))
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	id, events := h.Hub.Subscribe(topics, 64)
	defer h.Hub.Unsubscribe(id)

	ctx := c.Request.Context()

	// Reads are drained only to surface client-side closes.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutdown")
			return
		case <-readDone:
			return
		case evt, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "done")
				return
			}
			if err := writeEvent(ctx, conn, evt); err != nil {
				if h.Logger != nil {
					h.Logger.Debug("stream write failed", zap.String("sub_id", id), zap.Error(err))
				}
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt notify.Event) error {
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, raw)
}

func splitTopics(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if topic := strings.TrimSpace(part); topic != "" {
			out = append(out, topic)
		}
	}
	return out
}
