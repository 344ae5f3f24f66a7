package store

import (
	"context"

	"github.com/emrgen/article/internal/model"
)

type Store interface {
	ArticleStore
	LedgerStore
	TopicStore
	UserStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type ArticleStore interface {
	// CreateArticle creates a new article row.
	CreateArticle(ctx context.Context, article *model.Article) error
	// GetArticle retrieves an article by aid.
	GetArticle(ctx context.Context, aid string) (*model.Article, error)
	// ListArticles retrieves all articles, newest first.
	ListArticles(ctx context.Context) ([]*model.Article, error)
	// ListArticlesByUID retrieves the articles owned by a user, newest first.
	ListArticlesByUID(ctx context.Context, uid string) ([]*model.Article, error)
	// UpdateArticle saves an article row in place.
	UpdateArticle(ctx context.Context, article *model.Article) error
	// DeleteArticle deletes an article by aid.
	DeleteArticle(ctx context.Context, aid string) error
}

type LedgerStore interface {
	// CreateArTxRecord inserts a ledger audit row.
	CreateArTxRecord(ctx context.Context, record *model.ArTxRecord) error
	// GetArTxRecord retrieves a ledger audit row by transaction id.
	GetArTxRecord(ctx context.Context, txID string) (*model.ArTxRecord, error)
	// ListArTxRecordsByUID retrieves the audit rows of a user, newest first.
	ListArTxRecordsByUID(ctx context.Context, uid string) ([]*model.ArTxRecord, error)
	// ListArTxRecordsByMsgType retrieves audit rows by classification tag, newest first.
	ListArTxRecordsByMsgType(ctx context.Context, msgType string) ([]*model.ArTxRecord, error)
}

type TopicStore interface {
	// ReplaceArticleTopics replaces all topic rows of an article.
	ReplaceArticleTopics(ctx context.Context, aid string, topics []string) error
	// SearchTopics retrieves topic rows matching a topic prefix.
	SearchTopics(ctx context.Context, topic string) ([]*model.ArticleTopic, error)
	// RankTopicsTopK retrieves the top-k most recently updated articles under a topic.
	// An empty topic ranks across all articles.
	RankTopicsTopK(ctx context.Context, topic string, topK int) ([]*model.Article, error)
}

type UserStore interface {
	// CreateUser creates a user row.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUser retrieves a user by uid.
	GetUser(ctx context.Context, uid string) (*model.User, error)
	// UpdateUser saves a user row.
	UpdateUser(ctx context.Context, user *model.User) error
	// ExistsUser reports whether a user row exists.
	ExistsUser(ctx context.Context, uid string) (bool, error)
}
