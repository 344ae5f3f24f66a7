package service

import (
	"context"
	"fmt"

	v1 "github.com/emrgen/article/apis/v1"
	"github.com/emrgen/article/internal/cache"
	"github.com/emrgen/article/internal/model"
	"github.com/emrgen/article/internal/queue"
	"github.com/emrgen/article/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultTopK = 10
	maxTopK     = 100
)

// NewArticleService creates a new ArticleService.
func NewArticleService(store store.Store, cache cache.ArticleCache, queue queue.ArticleQueue) *ArticleService {
	return &ArticleService{
		store:    store,
		cache:    cache,
		queue:    queue,
		validate: validator.New(),
	}
}

// ArticleService implements the article RPC operations.
type ArticleService struct {
	store    store.Store
	cache    cache.ArticleCache
	queue    queue.ArticleQueue
	validate *validator.Validate
}

// GetArticle retrieves an article by aid, read-through the cache.
func (a *ArticleService) GetArticle(ctx context.Context, aid string) (*v1.Article, error) {
	if _, err := uuid.Parse(aid); err != nil {
		return nil, ErrInvalidArticleID
	}

	if cached, err := a.cache.GetArticle(ctx, aid); err == nil && cached != nil {
		return articleToAPI(cached), nil
	} else if err != nil {
		logrus.Errorf("article cache read failed: %v", err)
	}

	article, err := a.store.GetArticle(ctx, aid)
	if err != nil {
		return nil, err
	}

	if err := a.cache.SetArticle(ctx, article); err != nil {
		logrus.Errorf("article cache write failed: %v", err)
	}

	return articleToAPI(article), nil
}

// UpdateArticle upserts an article. Presence of the aid in the payload
// selects update over insert. The caller uid must match the record owner;
// the uid of a stored article never changes. When the request carries an
// updated_at precondition the stored record must still match it.
func (a *ArticleService) UpdateArticle(ctx context.Context, caller string, request *v1.UpdateArticleRequest) (*v1.UpdateArticleResponse, error) {
	if err := a.validate.Struct(request); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingField, err)
	}

	if caller == "" || caller != request.UID {
		return nil, ErrNotArticleOwner
	}

	// create path: mint the aid and insert
	if request.AID == "" {
		article := &model.Article{
			AID:     uuid.New().String(),
			UID:     request.UID,
			Title:   request.Title,
			Poster:  request.Poster,
			Content: request.Content,
			Tags:    request.Tags,
			Chain:   request.Chain,
		}

		if err := a.store.CreateArticle(ctx, article); err != nil {
			return nil, err
		}

		a.notifyChange(ctx, article)

		return &v1.UpdateArticleResponse{AID: article.AID, UpdatedAt: article.UpdatedAt}, nil
	}

	if _, err := uuid.Parse(request.AID); err != nil {
		return nil, ErrInvalidArticleID
	}

	var updated *model.Article
	err := a.store.Transaction(ctx, func(tx store.Store) error {
		article, err := tx.GetArticle(ctx, request.AID)
		if err != nil {
			return err
		}

		if article.UID != caller {
			return ErrNotArticleOwner
		}

		if request.UpdatedAt != nil && !article.UpdatedAt.Equal(*request.UpdatedAt) {
			logrus.Warnf("stale update for article %s: stored %v, precondition %v",
				article.AID, article.UpdatedAt, request.UpdatedAt)
			return ErrStaleArticleUpdate
		}

		article.Title = request.Title
		article.Poster = request.Poster
		article.Content = request.Content
		article.Tags = request.Tags
		article.Chain = request.Chain

		if err := tx.UpdateArticle(ctx, article); err != nil {
			return err
		}

		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := a.cache.DeleteArticle(ctx, updated.AID); err != nil {
		logrus.Errorf("article cache invalidation failed: %v", err)
	}
	a.notifyChange(ctx, updated)

	return &v1.UpdateArticleResponse{AID: updated.AID, UpdatedAt: updated.UpdatedAt}, nil
}

// DeleteArticle deletes an article owned by the caller.
func (a *ArticleService) DeleteArticle(ctx context.Context, caller, aid string) error {
	if _, err := uuid.Parse(aid); err != nil {
		return ErrInvalidArticleID
	}

	err := a.store.Transaction(ctx, func(tx store.Store) error {
		article, err := tx.GetArticle(ctx, aid)
		if err != nil {
			return err
		}

		if article.UID != caller {
			return ErrNotArticleOwner
		}

		if err := tx.ReplaceArticleTopics(ctx, aid, nil); err != nil {
			return err
		}

		return tx.DeleteArticle(ctx, aid)
	})
	if err != nil {
		return err
	}

	if err := a.cache.DeleteArticle(ctx, aid); err != nil {
		logrus.Errorf("article cache invalidation failed: %v", err)
	}

	return nil
}

// ListArticles lists all articles, newest first.
func (a *ArticleService) ListArticles(ctx context.Context) ([]*v1.Article, error) {
	articles, err := a.store.ListArticles(ctx)
	if err != nil {
		return nil, err
	}

	return articlesToAPI(articles), nil
}

// RankTopicsTopK returns the top-k articles under a topic, most recently
// updated first. An empty topic ranks across all articles.
func (a *ArticleService) RankTopicsTopK(ctx context.Context, topic string, topK int) ([]*v1.Article, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	articles, err := a.store.RankTopicsTopK(ctx, topic, topK)
	if err != nil {
		return nil, err
	}

	return articlesToAPI(articles), nil
}

// UpdateArticleTopics replaces the topic index rows of an article.
func (a *ArticleService) UpdateArticleTopics(ctx context.Context, caller string, aid string, topics []string) error {
	if _, err := uuid.Parse(aid); err != nil {
		return ErrInvalidArticleID
	}

	return a.store.Transaction(ctx, func(tx store.Store) error {
		article, err := tx.GetArticle(ctx, aid)
		if err != nil {
			return err
		}

		if article.UID != caller {
			return ErrNotArticleOwner
		}

		return tx.ReplaceArticleTopics(ctx, aid, topics)
	})
}

// SearchTopics searches the topic index by prefix.
func (a *ArticleService) SearchTopics(ctx context.Context, topic string) ([]*v1.Topic, error) {
	rows, err := a.store.SearchTopics(ctx, topic)
	if err != nil {
		return nil, err
	}

	topics := make([]*v1.Topic, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, &v1.Topic{
			Topic: row.Topic,
			AID:   row.AID,
		})
	}

	return topics, nil
}

func (a *ArticleService) notifyChange(ctx context.Context, article *model.Article) {
	if err := a.queue.PublishChange(ctx, article); err != nil {
		logrus.Errorf("failed to queue article change event: %v", err)
	}
}

func articleToAPI(article *model.Article) *v1.Article {
	return &v1.Article{
		AID:       article.AID,
		UID:       article.UID,
		Title:     article.Title,
		Poster:    article.Poster,
		Content:   article.Content,
		Tags:      article.Tags,
		Chain:     article.Chain,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
}

func articlesToAPI(articles []*model.Article) []*v1.Article {
	out := make([]*v1.Article, 0, len(articles))
	for _, article := range articles {
		out = append(out, articleToAPI(article))
	}
	return out
}
