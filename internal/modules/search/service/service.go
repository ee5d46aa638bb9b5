package search

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/meilisearch/meilisearch-go"
	"needu.com/community/internal/entity"
	"needu.com/community/pkg/content"
)

const postsIndex = "posts"

// PostDocument is the searchable projection of a community post.
type PostDocument struct {
	ID        string `json:"id"`
	PostID    uint   `json:"post_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	TopicID   uint   `json:"topic_id"`
	Nickname  string `json:"nickname"`
	CreatedAt int64  `json:"created_at"`
}

type SearchService interface {
	IndexPost(post *entity.Post, nickname string) error
	DeletePost(postID uint) error
	SearchPosts(query string, limit int) ([]PostDocument, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{client: client}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"topic_id"}
	if _, err := s.client.Index(postsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		slog.Warn("failed to update posts filterable attributes", slog.String("error", err.Error()))
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(postsIndex).UpdateSortableAttributes(&sortable); err != nil {
		slog.Warn("failed to update posts sortable attributes", slog.String("error", err.Error()))
	}
}

func (s *meiliSearchService) IndexPost(post *entity.Post, nickname string) error {
	doc := PostDocument{
		ID:        strconv.FormatUint(uint64(post.ID), 10),
		PostID:    post.ID,
		Title:     post.Title,
		Content:   content.PlainText(post.Content),
		TopicID:   post.TopicID,
		Nickname:  nickname,
		CreatedAt: post.CreatedAt.Unix(),
	}

	task, err := s.client.Index(postsIndex).AddDocuments([]PostDocument{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index post %d: %w", post.ID, err)
	}

	slog.Debug("indexed post", slog.Uint64("post_id", uint64(post.ID)), slog.Any("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) DeletePost(postID uint) error {
	_, err := s.client.Index(postsIndex).DeleteDocument(strconv.FormatUint(uint64(postID), 10))
	return err
}

func (s *meiliSearchService) SearchPosts(query string, limit int) ([]PostDocument, error) {
	raw, err := s.client.Index(postsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	var result struct {
		Hits []PostDocument `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search result: %w", err)
	}
	if result.Hits == nil {
		result.Hits = []PostDocument{}
	}

	return result.Hits, nil
}

func strPtr(s string) *string {
	return &s
}
