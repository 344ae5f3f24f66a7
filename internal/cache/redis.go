package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/emrgen/article/internal/model"
	redis "github.com/redis/go-redis/v9"
)

const (
	articleUpdatedAtHash = "article:updated_at"
)

func articleKey(aid string) string {
	return "article:" + aid
}

var _ ArticleCache = (*RedisArticleCache)(nil)

type RedisArticleCache struct {
	client *redis.Client
}

func NewRedisArticleCache(addr string) *RedisArticleCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password set
		DB:       0,  // Use default DB
		Protocol: 2,  // Connection protocol
	})

	return &RedisArticleCache{client: client}
}

func (r *RedisArticleCache) GetArticle(ctx context.Context, aid string) (*model.Article, error) {
	res := r.client.Get(ctx, articleKey(aid))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	article := &model.Article{}
	if err := json.Unmarshal(buf, article); err != nil {
		return nil, err
	}

	return article, nil
}

func (r *RedisArticleCache) SetArticle(ctx context.Context, article *model.Article) error {
	marshal, err := json.Marshal(article)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Set(ctx, articleKey(article.AID), marshal, time.Hour).Err(); err != nil {
			return err
		}

		if err := p.HSet(ctx, articleUpdatedAtHash, article.AID, article.UpdatedAt.UnixNano()).Err(); err != nil {
			return err
		}

		return nil
	})

	return err
}

func (r *RedisArticleCache) DeleteArticle(ctx context.Context, aid string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Del(ctx, articleKey(aid)).Err(); err != nil {
			return err
		}

		return p.HDel(ctx, articleUpdatedAtHash, aid).Err()
	})

	return err
}

// NullArticleCache is a pass-through cache for tests and single-node runs
// without redis.
type NullArticleCache struct{}

var _ ArticleCache = (*NullArticleCache)(nil)

func NewNullArticleCache() *NullArticleCache {
	return &NullArticleCache{}
}

func (n *NullArticleCache) GetArticle(ctx context.Context, aid string) (*model.Article, error) {
	return nil, nil
}

func (n *NullArticleCache) SetArticle(ctx context.Context, article *model.Article) error {
	return nil
}

func (n *NullArticleCache) DeleteArticle(ctx context.Context, aid string) error {
	return nil
}
