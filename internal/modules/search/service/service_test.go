package search

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"needu.com/community/internal/entity"
)

const taskJSON = `{"taskUid":1,"indexUid":"posts","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2026-01-01T00:00:00Z"}`

type recorded struct {
	method string
	path   string
	body   []byte
}

func newMeili(t *testing.T, searchBody string) (SearchService, func() []recorded) {
	t.Helper()

	var mu sync.Mutex
	var calls []recorded

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/indexes/posts/search" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(searchBody))
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(taskJSON))
	}))
	t.Cleanup(srv.Close)

	svc := NewMeiliSearchService(meilisearch.New(srv.URL))
	return svc, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestIndexPostSendsPlainTextDocument(t *testing.T) {
	svc, calls := newMeili(t, `{"hits":[]}`)

	post := &entity.Post{
		ID:        42,
		Title:     "Hello",
		Content:   "<p>first</p><p>second &amp; third</p>",
		TopicID:   3,
		CreatedAt: time.Unix(1700000000, 0),
	}
	require.NoError(t, svc.IndexPost(post, "alice"))

	var add *recorded
	for _, c := range calls() {
		if c.method == http.MethodPost && c.path == "/indexes/posts/documents" {
			c := c
			add = &c
		}
	}
	require.NotNil(t, add)

	var docs []PostDocument
	require.NoError(t, json.Unmarshal(add.body, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "42", docs[0].ID)
	assert.Equal(t, "first second & third", docs[0].Content)
	assert.Equal(t, "alice", docs[0].Nickname)
	assert.EqualValues(t, 1700000000, docs[0].CreatedAt)
}

func TestSearchPostsDecodesHits(t *testing.T) {
	svc, _ := newMeili(t, `{"hits":[{"id":"7","post_id":7,"title":"Go tips","content":"use errgroup","topic_id":1,"nickname":"bob","created_at":1}],"query":"go","limit":5}`)

	hits, err := svc.SearchPosts("go", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.EqualValues(t, 7, hits[0].PostID)
	assert.Equal(t, "Go tips", hits[0].Title)
}

func TestDeletePost(t *testing.T) {
	svc, calls := newMeili(t, `{"hits":[]}`)

	require.NoError(t, svc.DeletePost(9))

	found := false
	for _, c := range calls() {
		if c.method == http.MethodDelete && c.path == "/indexes/posts/documents/9" {
			found = true
		}
	}
	assert.True(t, found)
}
