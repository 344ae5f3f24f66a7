package store

import (
	"context"
	"errors"

	"github.com/emrgen/article/internal/model"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateArticle(ctx context.Context, article *model.Article) error {
	return g.db.WithContext(ctx).Create(article).Error
}

func (g *GormStore) GetArticle(ctx context.Context, aid string) (*model.Article, error) {
	var article model.Article
	err := g.db.WithContext(ctx).Where("aid = ?", aid).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (g *GormStore) ListArticles(ctx context.Context) ([]*model.Article, error) {
	var articles []*model.Article
	err := g.db.WithContext(ctx).Order("created_at desc").Find(&articles).Error
	return articles, err
}

func (g *GormStore) ListArticlesByUID(ctx context.Context, uid string) ([]*model.Article, error) {
	var articles []*model.Article
	err := g.db.WithContext(ctx).Where("uid = ?", uid).Order("created_at desc").Find(&articles).Error
	return articles, err
}

func (g *GormStore) UpdateArticle(ctx context.Context, article *model.Article) error {
	return g.db.WithContext(ctx).Save(article).Error
}

func (g *GormStore) DeleteArticle(ctx context.Context, aid string) error {
	return g.db.WithContext(ctx).Where("aid = ?", aid).Delete(&model.Article{}).Error
}

func (g *GormStore) CreateArTxRecord(ctx context.Context, record *model.ArTxRecord) error {
	return g.db.WithContext(ctx).Create(record).Error
}

func (g *GormStore) GetArTxRecord(ctx context.Context, txID string) (*model.ArTxRecord, error) {
	var record model.ArTxRecord
	err := g.db.WithContext(ctx).Where("tx_id = ?", txID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArTxRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (g *GormStore) ListArTxRecordsByUID(ctx context.Context, uid string) ([]*model.ArTxRecord, error) {
	var records []*model.ArTxRecord
	err := g.db.WithContext(ctx).Where("uid = ?", uid).Order("created_at desc").Find(&records).Error
	return records, err
}

func (g *GormStore) ListArTxRecordsByMsgType(ctx context.Context, msgType string) ([]*model.ArTxRecord, error) {
	var records []*model.ArTxRecord
	err := g.db.WithContext(ctx).Where("msg_type = ?", msgType).Order("created_at desc").Find(&records).Error
	return records, err
}

// ReplaceArticleTopics replaces the topic rows of an article
// NOTE: should run in a transaction
func (g *GormStore) ReplaceArticleTopics(ctx context.Context, aid string, topics []string) error {
	if err := g.db.WithContext(ctx).Where("aid = ?", aid).Delete(&model.ArticleTopic{}).Error; err != nil {
		return err
	}

	if len(topics) == 0 {
		return nil
	}

	rows := make([]*model.ArticleTopic, 0, len(topics))
	for _, topic := range topics {
		rows = append(rows, &model.ArticleTopic{
			Topic: topic,
			AID:   aid,
		})
	}

	return g.db.WithContext(ctx).Create(rows).Error
}

func (g *GormStore) SearchTopics(ctx context.Context, topic string) ([]*model.ArticleTopic, error) {
	var rows []*model.ArticleTopic
	err := g.db.WithContext(ctx).Where("topic LIKE ?", topic+"%").Find(&rows).Error
	return rows, err
}

func (g *GormStore) RankTopicsTopK(ctx context.Context, topic string, topK int) ([]*model.Article, error) {
	var articles []*model.Article

	if topic == "" {
		err := g.db.WithContext(ctx).Order("updated_at desc").Limit(topK).Find(&articles).Error
		return articles, err
	}

	err := g.db.WithContext(ctx).
		Joins("JOIN article_topics ON article_topics.aid = articles.aid").
		Where("article_topics.topic = ?", topic).
		Order("articles.updated_at desc").
		Limit(topK).
		Find(&articles).Error
	return articles, err
}

func (g *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	return g.db.WithContext(ctx).Create(user).Error
}

func (g *GormStore) GetUser(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	err := g.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *GormStore) UpdateUser(ctx context.Context, user *model.User) error {
	return g.db.WithContext(ctx).Save(user).Error
}

func (g *GormStore) ExistsUser(ctx context.Context, uid string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.User{}).Where("uid = ?", uid).Count(&count).Error
	return count > 0, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
