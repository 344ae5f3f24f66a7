package queue

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/emrgen/article/internal/model"
	"github.com/sirupsen/logrus"
)

var _ ArticleQueue = (*KafkaArticleQueue)(nil)

// KafkaArticleQueue publishes article change events to a kafka topic.
type KafkaArticleQueue struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaArticleQueue(brokers string) (*KafkaArticleQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, err
	}

	q := &KafkaArticleQueue{
		producer: producer,
		topic:    ArticlePublishedTopic,
	}

	// drain delivery reports so the producer queue never fills up
	go func() {
		for e := range producer.Events() {
			if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
				logrus.Errorf("failed to deliver article event: %v", m.TopicPartition.Error)
			}
		}
	}()

	return q, nil
}

func (q *KafkaArticleQueue) PublishChange(ctx context.Context, article *model.Article) error {
	payload, err := json.Marshal(article)
	if err != nil {
		return err
	}

	return q.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &q.topic, Partition: kafka.PartitionAny},
		Key:            []byte(article.AID),
		Value:          payload,
	}, nil)
}

func (q *KafkaArticleQueue) Close() {
	q.producer.Flush(5000)
	q.producer.Close()
}
