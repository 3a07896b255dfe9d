package httpstore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/alexanderramin/hearth/internal/docstore"
)

// Watch opens a snapshot stream. It returns once the server accepted the
// stream; snapshots are then delivered in order from a single goroutine.
func (c *Client) Watch(ctx context.Context, path string, onSnapshot func([]docstore.Doc), onError func(error)) (docstore.Unsubscribe, error) {
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.base+"/v1/watch/"+escapePath(path), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.hc.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		cancel()
		return nil, statusError(resp)
	}

	var closed atomic.Bool
	go func() {
		defer resp.Body.Close()
		err := readEvents(resp.Body, func(ev event) error {
			switch ev.name {
			case "snapshot":
				docs, err := decodeSnapshot(ev.data)
				if err != nil {
					return err
				}
				if !closed.Load() {
					onSnapshot(docs)
				}
			case "error":
				var body errorResponse
				_ = json.Unmarshal([]byte(ev.data), &body)
				return fmt.Errorf("watch %s: %s", path, body.Error)
			}
			return nil
		})
		if streamCtx.Err() != nil {
			return
		}
		if err == nil {
			err = fmt.Errorf("watch %s: stream closed by server", path)
		}
		c.log.Warn().Err(err).Str("path", path).Msg("watch stream ended")
		if onError != nil {
			onError(err)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			closed.Store(true)
			cancel()
		})
	}, nil
}

func decodeSnapshot(data string) ([]docstore.Doc, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var docs []docstore.Doc
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return docs, nil
}

type event struct {
	name string
	data string
}

// readEvents parses a text/event-stream body, calling fn for every
// complete event until the body ends or fn fails.
func readEvents(body io.Reader, fn func(event) error) error {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var ev event
	var data []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if ev.name != "" || len(data) > 0 {
				ev.data = strings.Join(data, "\n")
				if err := fn(ev); err != nil {
					return err
				}
			}
			ev, data = event{}, nil
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.name = value
		case "data":
			data = append(data, value)
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
