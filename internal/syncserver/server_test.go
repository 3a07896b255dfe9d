package syncserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/docstore/httpstore"
	"github.com/alexanderramin/hearth/internal/syncserver"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type ServerSuite struct {
	suite.Suite
	backend *docstore.Memory
	server  *httptest.Server
	client  *httpstore.Client
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *ServerSuite) SetupTest() {
	s.backend = docstore.NewMemory()
	srv, err := syncserver.New(s.backend, zerolog.Nop(), prometheus.NewRegistry(), syncserver.Options{})
	s.Require().NoError(err)
	s.server = httptest.NewServer(srv.Handler())
	s.client = httpstore.New(s.server.URL, nil, zerolog.Nop())
}

func (s *ServerSuite) TearDownTest() {
	s.server.Close()
}

func (s *ServerSuite) TestHealthz() {
	resp, err := http.Get(s.server.URL + "/healthz")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *ServerSuite) TestDocumentRoundTrip() {
	ctx := context.Background()
	path := docstore.CollectionPath("ABC234", "accounts")

	s.Require().NoError(s.client.Set(ctx, path, "기본", docstore.Fields{"name": "기본", "initialBalance": int64(10000)}))
	s.Require().NoError(s.client.Merge(ctx, path, "기본", docstore.Fields{"ownerId": "u1"}))

	doc, err := s.client.Get(ctx, path, "기본")
	s.Require().NoError(err)
	s.Equal("기본", doc.ID)
	s.Equal("u1", doc.Fields["ownerId"])

	s.Require().NoError(s.client.Delete(ctx, path, "기본"))
	_, err = s.client.Get(ctx, path, "기본")
	s.ErrorIs(err, docstore.ErrNotFound)
}

func (s *ServerSuite) TestAddAndQuery() {
	ctx := context.Background()
	path := docstore.CollectionPath("ABC234", "budgets")

	id, err := s.client.Add(ctx, path, docstore.Fields{"title": "커피", "authorId": "me"})
	s.Require().NoError(err)
	s.NotEmpty(id)
	_, err = s.client.Add(ctx, path, docstore.Fields{"title": "점심", "authorId": "you"})
	s.Require().NoError(err)

	docs, err := s.client.Query(ctx, path, docstore.Where("authorId", "me"))
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal(id, docs[0].ID)
}

func (s *ServerSuite) TestBatchLimit() {
	ops := make([]docstore.Op, docstore.MaxBatchWrites+1)
	for i := range ops {
		ops[i] = docstore.Op{Kind: docstore.OpDelete, Path: "groups/ABC234/todos", ID: "x"}
	}
	resp, err := http.Post(s.server.URL+"/v1/batch", "application/json",
		strings.NewReader(`{"ops":`+opsJSON(len(ops))+`}`))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusRequestEntityTooLarge, resp.StatusCode)

	s.ErrorIs(s.client.Batch(context.Background(), ops), docstore.ErrBatchTooLarge)
}

func (s *ServerSuite) TestNilFieldRejected() {
	req, err := http.NewRequest(http.MethodPut, s.server.URL+"/v1/docs/groups/ABC234", strings.NewReader(`{"name":null}`))
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestWatchStreamsSnapshots() {
	ctx := context.Background()
	path := docstore.CollectionPath("ABC234", "todos")

	var mu sync.Mutex
	var sizes []int
	unsub, err := s.client.Watch(ctx, path, func(docs []docstore.Doc) {
		mu.Lock()
		sizes = append(sizes, len(docs))
		mu.Unlock()
	}, nil)
	s.Require().NoError(err)
	defer unsub()

	seen := func(n int) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(sizes) > 0 && sizes[len(sizes)-1] == n
		}
	}
	s.Eventually(seen(0), 2*time.Second, 10*time.Millisecond)

	s.Require().NoError(s.backend.Set(ctx, path, "t1", docstore.Fields{"title": "청소"}))
	s.Eventually(seen(1), 2*time.Second, 10*time.Millisecond)
}

func (s *ServerSuite) TestMetricsEndpoint() {
	_, _ = http.Get(s.server.URL + "/healthz")
	resp, err := http.Get(s.server.URL + "/metrics")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func opsJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = `{"kind":"delete","path":"groups/ABC234/todos","id":"x"}`
	}
	return "[" + strings.Join(parts, ",") + "]"
}
