package cache

import (
	"context"

	"github.com/emrgen/article/internal/model"
)

// ArticleCache caches the latest persisted article records.
type ArticleCache interface {
	// GetArticle gets an article from the cache. A nil article with nil
	// error means a cache miss.
	GetArticle(ctx context.Context, aid string) (*model.Article, error)
	// SetArticle sets an article in the cache.
	SetArticle(ctx context.Context, article *model.Article) error
	// DeleteArticle removes an article from the cache.
	DeleteArticle(ctx context.Context, aid string) error
}
