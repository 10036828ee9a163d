package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

// DefaultTopic carries charging request inserts.
const DefaultTopic = "ev_charging_requests"

// KafkaConfig selects brokers and topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

func (c KafkaConfig) topic() string {
	if strings.TrimSpace(c.Topic) == "" {
		return DefaultTopic
	}
	return c.Topic
}

const (
	minReadBackoff = 500 * time.Millisecond
	maxReadBackoff = 30 * time.Second
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaSource consumes charging requests and publishes them into a hub.
type KafkaSource struct {
	reader     messageReader
	hub        *Hub
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewKafkaSource builds a reader on cfg.
func NewKafkaSource(cfg KafkaConfig, hub *Hub, logger *zap.Logger) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("feed: at least one broker is required")
	}
	rc := kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.topic(),
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  500 * time.Millisecond,
	}
	if cfg.GroupID == "" {
		rc.StartOffset = kafka.LastOffset
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaSource{
		reader:     kafka.NewReader(rc),
		hub:        hub,
		logger:     logger,
		minBackoff: minReadBackoff,
		maxBackoff: maxReadBackoff,
	}, nil
}

// Run reads until ctx is cancelled or the reader is closed. Broker errors are retried
// with exponential backoff; undecodable messages are skipped.
func (s *KafkaSource) Run(ctx context.Context) error {
	backoff := s.minBackoff
	for {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			s.logger.Warn("charging request read failed, retrying",
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			if backoff *= 2; backoff > s.maxBackoff {
				backoff = s.maxBackoff
			}
			continue
		}
		backoff = s.minBackoff
		req, err := decodeRequest(msg.Value)
		if err != nil {
			s.logger.Warn("skipping malformed charging request", zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		if req.ID == "" {
			req.ID = string(msg.Key)
		}
		s.hub.Publish(req)
	}
}

// Close releases the reader.
func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

// Sink accepts new charging requests.
type Sink interface {
	Insert(ctx context.Context, req models.ChargingRequest) (models.ChargingRequest, error)
}

// KafkaSink writes inserts to the topic; the source then delivers them.
type KafkaSink struct {
	writer *kafka.Writer
	now    func() time.Time
}

// NewKafkaSink builds a writer on cfg.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("feed: at least one broker is required")
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.topic(),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Insert stamps and writes req.
func (s *KafkaSink) Insert(ctx context.Context, req models.ChargingRequest) (models.ChargingRequest, error) {
	req = stamp(req, s.now())
	data, err := json.Marshal(req)
	if err != nil {
		return req, err
	}
	if err := s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(req.ID), Value: data}); err != nil {
		return req, fmt.Errorf("feed: write message: %w", err)
	}
	return req, nil
}

// Close flushes and releases the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// HubSink publishes inserts straight into a hub when no broker is configured.
type HubSink struct {
	hub *Hub
	now func() time.Time
}

// NewHubSink returns a broker-less sink.
func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{hub: hub, now: func() time.Time { return time.Now().UTC() }}
}

// Insert stamps and publishes req.
func (s *HubSink) Insert(_ context.Context, req models.ChargingRequest) (models.ChargingRequest, error) {
	req = stamp(req, s.now())
	s.hub.Publish(req)
	return req, nil
}

func stamp(req models.ChargingRequest, now time.Time) models.ChargingRequest {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Time.IsZero() {
		req.Time = now
	}
	return req
}

func decodeRequest(raw []byte) (models.ChargingRequest, error) {
	var req models.ChargingRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, err
	}
	if strings.TrimSpace(req.User) == "" {
		return req, errors.New("user is required")
	}
	return req, nil
}
