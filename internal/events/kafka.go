package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"price-resolution-api/internal/models"
)

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is the JSON record written to Kafka for every resolution event.
type Message struct {
	Type          EventType    `json:"type"`
	Timestamp     time.Time    `json:"timestamp"`
	CorrelationID string       `json:"correlationId,omitempty"`
	ProductID     int64        `json:"productId"`
	BrandID       int64        `json:"brandId"`
	PriceDate     string       `json:"priceDate"`
	Found         bool         `json:"found"`
	PriceList     int64        `json:"priceList,omitempty"`
	Value         *json.Number `json:"value,omitempty"`
	Currency      string       `json:"currency,omitempty"`
}

// Producer publishes resolution events to a Kafka topic.
type Producer struct {
	writer messageWriter
	topic  string
}

// NewProducer creates a new Kafka producer.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// Attach subscribes the producer to every resolution event on m.
func (p *Producer) Attach(m *Manager) {
	m.Subscribe(EventPriceResolved, p.Handle)
	m.Subscribe(EventPriceNotFound, p.Handle)
}

// Handle converts an event to a Message and writes it.
func (p *Producer) Handle(ctx context.Context, event Event) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	return p.publish(ctx, partitionKey(msg.ProductID, msg.BrandID), msg)
}

// NewMessage maps an event to its wire record.
func NewMessage(event Event) (Message, error) {
	msg := Message{Type: event.Type, Timestamp: event.Timestamp.UTC()}

	var req models.LookupRequest
	switch data := event.Data.(type) {
	case PriceResolvedData:
		req = data.Request
		msg.CorrelationID = data.CorrelationID
		msg.Found = true
		msg.PriceList = data.Window.ID
		msg.Currency = data.Window.Currency
		value := json.Number(data.Window.Value.StringFixed(2))
		msg.Value = &value
	case PriceNotFoundData:
		req = data.Request
		msg.CorrelationID = data.CorrelationID
	default:
		return Message{}, fmt.Errorf("unsupported event payload %T", event.Data)
	}

	msg.ProductID = req.ProductID
	msg.BrandID = req.BrandID
	if !req.At.IsZero() {
		msg.PriceDate = req.At.UTC().Format(models.DateTimeLayout)
	}
	return msg, nil
}

func partitionKey(productID, brandID int64) string {
	return strconv.FormatInt(productID, 10) + ":" + strconv.FormatInt(brandID, 10)
}

func (p *Producer) publish(ctx context.Context, key string, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
