package queue

import (
	"context"

	"github.com/emrgen/article/internal/model"
)

var ArticlePublishedTopic = "article:published"

// ArticleQueue broadcasts article publish events to downstream consumers
// (feed rebuilds, search indexing). Delivery is best effort and must never
// fail the publish that produced the event.
type ArticleQueue interface {
	// PublishChange appends an article change event to the queue.
	PublishChange(ctx context.Context, article *model.Article) error
	Close()
}

// NullArticleQueue drops all events.
type NullArticleQueue struct{}

var _ ArticleQueue = (*NullArticleQueue)(nil)

func NewNullArticleQueue() *NullArticleQueue {
	return &NullArticleQueue{}
}

func (n *NullArticleQueue) PublishChange(ctx context.Context, article *model.Article) error {
	return nil
}

func (n *NullArticleQueue) Close() {}
