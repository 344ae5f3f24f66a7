package model

// ArticleTopic indexes an article under a topic. Rows for an article are
// replaced wholesale when its topics are updated.
type ArticleTopic struct {
	Topic string `gorm:"primaryKey;not null;index:idx_article_topics_topic"`
	AID   string `gorm:"primaryKey;uuid;not null;index:idx_article_topics_aid;column:aid"`
}

func (ArticleTopic) TableName() string {
	return "article_topics"
}
