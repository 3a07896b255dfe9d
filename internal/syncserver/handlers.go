package syncserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/gin-gonic/gin"
)

// heartbeatInterval keeps idle watch streams alive through proxies.
var heartbeatInterval = 25 * time.Second

// AddResponse is returned when a document is created with a generated id.
type AddResponse struct {
	ID string `json:"id"`
}

// ListResponse carries the result of a query.
type ListResponse struct {
	Data []docstore.Doc `json:"data"`
}

// BatchRequest is the body of POST /v1/batch.
type BatchRequest struct {
	Ops []docstore.Op `json:"ops"`
}

// splitDocPath splits ".../collection/id" into its collection and id.
func splitDocPath(raw string) (string, string, error) {
	p, err := docstore.CleanPath(raw)
	if err != nil {
		return "", "", err
	}
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", "", fmt.Errorf("%w: %q has no document id", docstore.ErrInvalidPath, p)
	}
	return p[:i], p[i+1:], nil
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

func (s *Server) bindFields(c *gin.Context) (docstore.Fields, bool) {
	var f docstore.Fields
	if err := decodeJSON(c.Request.Body, &f); err != nil {
		writeError(c, http.StatusBadRequest, "The request body must be a JSON object")
		return nil, false
	}
	if f == nil {
		f = docstore.Fields{}
	}
	return f, true
}

func (s *Server) getDoc(c *gin.Context) {
	path, id, err := splitDocPath(c.Param("path"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	doc, err := s.store.Get(c.Request.Context(), path, id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) setDoc(c *gin.Context) {
	path, id, err := splitDocPath(c.Param("path"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	fields, ok := s.bindFields(c)
	if !ok {
		return
	}
	if err := s.store.Set(c.Request.Context(), path, id, fields); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) mergeDoc(c *gin.Context) {
	path, id, err := splitDocPath(c.Param("path"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	fields, ok := s.bindFields(c)
	if !ok {
		return
	}
	if err := s.store.Merge(c.Request.Context(), path, id, fields); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteDoc(c *gin.Context) {
	path, id, err := splitDocPath(c.Param("path"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	if err := s.store.Delete(c.Request.Context(), path, id); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addDoc(c *gin.Context) {
	fields, ok := s.bindFields(c)
	if !ok {
		return
	}
	id, err := s.store.Add(c.Request.Context(), c.Param("path"), fields)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AddResponse{ID: id})
}

// query treats every query string parameter as an equality filter.
func (s *Server) query(c *gin.Context) {
	var filters []docstore.Filter
	for field, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			filters = append(filters, docstore.Where(field, values[0]))
		}
	}
	docs, err := s.store.Query(c.Request.Context(), c.Param("path"), filters...)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if docs == nil {
		docs = []docstore.Doc{}
	}
	c.JSON(http.StatusOK, ListResponse{Data: docs})
}

func (s *Server) batch(c *gin.Context) {
	var req BatchRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		writeError(c, http.StatusBadRequest, "The request body must be a batch object")
		return
	}
	if err := s.store.Batch(c.Request.Context(), req.Ops); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// watch streams a "snapshot" event with the full collection on every
// change. Snapshots that pile up behind a slow client are coalesced into
// the newest one.
func (s *Server) watch(c *gin.Context) {
	latest := make(chan []docstore.Doc, 1)
	var mu sync.Mutex
	push := func(docs []docstore.Doc) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case <-latest:
		default:
		}
		latest <- docs
	}
	failed := make(chan error, 1)
	onError := func(err error) {
		select {
		case failed <- err:
		default:
		}
	}

	unsub, err := s.store.Watch(c.Request.Context(), c.Param("path"), push, onError)
	if err != nil {
		s.storeError(c, err)
		return
	}
	defer unsub()

	s.metrics.activeWatches.Inc()
	defer s.metrics.activeWatches.Dec()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case docs := <-latest:
			if docs == nil {
				docs = []docstore.Doc{}
			}
			c.SSEvent("snapshot", docs)
			s.metrics.snapshotsSent.Inc()
			return true
		case err := <-failed:
			c.SSEvent("error", HTTPError{Error: err.Error()})
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", "")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
