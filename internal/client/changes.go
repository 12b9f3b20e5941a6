package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	model "task-manager.com/task-manager/internal/models"
)

const changeBuffer = 16

// Subscribe opens the change stream for the given tables and returns once
// the API has confirmed the subscription. The channel is closed when ctx is
// done or the stream ends.
func (c *Client) Subscribe(ctx context.Context, tables ...string) (<-chan model.Change, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	query := url.Values{}
	for _, table := range tables {
		query.Add("table", table)
	}
	path := "/changes"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build change stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	token := c.token()
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open change stream: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		defer res.Body.Close()
		data, _ := io.ReadAll(res.Body)
		if res.StatusCode == http.StatusUnauthorized {
			c.expire(token)
		}
		return nil, decodeError(res.StatusCode, data)
	}

	scanner := bufio.NewScanner(res.Body)
	if err := awaitConnected(scanner); err != nil {
		res.Body.Close()
		return nil, fmt.Errorf("open change stream: %w", err)
	}

	out := make(chan model.Change, changeBuffer)
	go c.readChanges(ctx, res.Body, scanner, out)
	return out, nil
}

func awaitConnected(scanner *bufio.Scanner) error {
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ": connected") {
			return nil
		}
		return fmt.Errorf("unexpected stream preamble %q", line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}

func (c *Client) readChanges(ctx context.Context, body io.ReadCloser, scanner *bufio.Scanner, out chan<- model.Change) {
	defer close(out)
	defer body.Close()

	// The scanner only returns when the body is closed.
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() == 0 {
				continue
			}
			payload := data.String()
			data.Reset()

			var change model.Change
			if err := json.Unmarshal([]byte(payload), &change); err != nil {
				c.log.Warnw("dropping malformed change event", "error", err)
				continue
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		case strings.HasPrefix(line, ":"):
			// comment or heartbeat
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.log.Warnw("change stream ended", "error", err)
	}
}
