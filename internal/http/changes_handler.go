package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const heartbeatInterval = 25 * time.Second

// Changes streams the user's change notifications as server-sent events.
// Repeated table query parameters narrow the stream; none means all tables.
func (h *Handler) Changes(c echo.Context) error {
	ctx := c.Request().Context()
	userID := session(c).UserID

	wanted := map[string]bool{}
	for _, table := range c.QueryParams()["table"] {
		wanted[table] = true
	}

	changes, err := h.feed.Subscribe(ctx, userID)
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	// The opening comment tells the client the subscription is live.
	if _, err := fmt.Fprint(res, ": connected\n\n"); err != nil {
		return nil
	}
	res.Flush()

	h.log.Debugw("change stream opened", "user", userID)
	defer h.log.Debugw("change stream closed", "user", userID)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.streamsDone:
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if len(wanted) > 0 && !wanted[change.Table] {
				continue
			}
			payload, err := json.Marshal(change)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(res, "event: change\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
