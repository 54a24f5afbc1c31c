//go:build integration

package sink

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"homedisclose/internal/ledger/models"
	"homedisclose/internal/platform/config"
	"homedisclose/internal/platform/kafka"
	"homedisclose/pkg/domain"
	"homedisclose/pkg/testutil/containers"
)

type KafkaSinkIntegrationSuite struct {
	suite.Suite
	broker   string
	topic    string
	producer *kgo.Client
	sink     *KafkaSink
}

func TestKafkaSinkIntegrationSuite(t *testing.T) {
	suite.Run(t, new(KafkaSinkIntegrationSuite))
}

func (s *KafkaSinkIntegrationSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker
}

func (s *KafkaSinkIntegrationSuite) SetupTest() {
	s.topic = "ledger-" + uuid.NewString()
	producer, err := kafka.NewProducer(context.Background(), config.KafkaConfig{
		Brokers:           []string{s.broker},
		LedgerTopic:       s.topic,
		CreateTopic:       true,
		Partitions:        1,
		ReplicationFactor: 1,
	}, nil)
	s.Require().NoError(err)
	s.producer = producer
	s.sink = NewKafkaSink(producer, s.topic)
}

func (s *KafkaSinkIntegrationSuite) TearDownTest() {
	s.producer.Close()
}

func (s *KafkaSinkIntegrationSuite) consume(n int) []*kgo.Record {
	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	var out []*kgo.Record
	for len(out) < n {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "timed out after %d of %d records", len(out), n)
		fetches.EachRecord(func(r *kgo.Record) {
			out = append(out, r)
		})
	}
	return out
}

func (s *KafkaSinkIntegrationSuite) TestRecordsKeepDocumentOrder() {
	ctx := context.Background()
	documentID := domain.NewDocumentID()
	shareID := domain.NewShareID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	types := []models.EventType{models.EventShared, models.EventShareViewed, models.EventShareSigned}
	for i, typ := range types {
		s.Require().NoError(s.sink.Publish(ctx, models.Event{
			ID:         domain.NewEventID(),
			DocumentID: documentID,
			Type:       typ,
			ShareID:    &shareID,
			Metadata:   map[string]any{"step": i},
			OccurredAt: now.Add(time.Duration(i) * time.Second),
		}))
	}

	records := s.consume(len(types))
	s.Require().Len(records, len(types))
	for i, r := range records {
		s.Equal(documentID.String(), string(r.Key))
		s.Equal(string(types[i]), headerValue(r, "event_type"))

		var decoded models.Event
		s.Require().NoError(json.Unmarshal(r.Value, &decoded))
		s.Equal(types[i], decoded.Type)
		s.Require().NotNil(decoded.ShareID)
		s.Equal(shareID, *decoded.ShareID)
	}
}

func headerValue(r *kgo.Record, key string) string {
	for _, h := range r.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
