package pkg

import (
	"context"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"Lee_Forum/internal/config"
)

// Event 一条待投递的审计事件，Headers 供消费方不解析 payload 就能路由
type Event struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer brokers 为空时返回 nil，调用方退回日志投递
func NewKafkaProducer(cfg config.KafkaConfig) *KafkaProducer {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	return &KafkaProducer{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}}
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Publish 同步写入，RequireAll 下返回 nil 即已落盘
func (p *KafkaProducer) Publish(ctx context.Context, ev Event) error {
	return p.writer.WriteMessages(ctx, toMessage(ev))
}

func toMessage(ev Event) kafka.Message {
	msg := kafka.Message{Key: []byte(ev.Key), Value: ev.Value}
	for k, v := range ev.Headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return msg
}

func PartitionKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}
