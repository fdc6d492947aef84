package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"tenant-deployer/internal/pkg/config"
)

// messageWriter kafka.Writer 的子集，便于测试替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier 以 JSON 投递事件，按组织 id 分区
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaNotifier 创建 Kafka 通知器
func NewKafkaNotifier(cfg config.KafkaConfig) (*KafkaNotifier, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaNotifier(w), nil
}

func newKafkaNotifier(w messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w, timeout: 5 * time.Second}
}

func (n *KafkaNotifier) Send(ctx context.Context, event *Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrganizationID),
		Value: value,
		Time:  event.Timestamp,
	}); err != nil {
		return fmt.Errorf("kafka 投递失败: %w", err)
	}
	return nil
}

// Close 关闭 writer
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
