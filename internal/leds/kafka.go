package leds

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// FrameMessage is the payload published for every applied frame.
type FrameMessage struct {
	Device    string    `json:"device"`
	AppliedAt time.Time `json:"applied_at"`
	Pixels    Frame     `json:"pixels"`
}

// KafkaDriver publishes frames so remote displays can mirror the LEDs.
type KafkaDriver struct {
	writer messageWriter
	device string
	now    func() time.Time
}

// NewKafkaDriver creates a driver publishing to topic, keyed by device.
func NewKafkaDriver(brokers []string, topic, device string) *KafkaDriver {
	return newKafkaDriver(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}, device)
}

func newKafkaDriver(w messageWriter, device string) *KafkaDriver {
	return &KafkaDriver{writer: w, device: device, now: time.Now}
}

func (d *KafkaDriver) SetFrame(ctx context.Context, frame Frame) {
	payload, err := json.Marshal(FrameMessage{
		Device:    d.device,
		AppliedAt: d.now().UTC(),
		Pixels:    frame,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode frame", "error", err)
		return
	}

	msg := kafka.Message{Key: []byte(d.device), Value: payload}
	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish frame", "device", d.device, "error", err)
	}
}

// Close flushes and closes the writer.
func (d *KafkaDriver) Close() error {
	return d.writer.Close()
}
