package outbox

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tiankay999/Kay-Birks-website/internal/notify"
)

const confirmedOrdersTopic = "orders-confirmed"

// Dispatcher drains the notification ledger: each pending entry becomes one
// confirmation email and, when brokers are configured, one order-confirmed
// event. A failed email stays pending and is retried on the next tick.
type Dispatcher struct {
	tick   time.Duration
	repo   RepoInterface
	sender notify.Sender
	writer *kafka.Writer
}

func NewDispatcher(repo RepoInterface, sender notify.Sender, brokers ...string) *Dispatcher {
	d := &Dispatcher{
		tick:   time.Second,
		repo:   repo,
		sender: sender,
	}
	if len(brokers) > 0 {
		d.writer = &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  confirmedOrdersTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		}
	}
	return d
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.dispatchPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) Close() {
	if d.writer == nil {
		return
	}
	if err := d.writer.Close(); err != nil {
		log.Printf("failed to close kafka writer: %v", err)
	}
}

func (d *Dispatcher) dispatchPending(ctx context.Context) {
	pending, err := d.repo.GetUnprocessed(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch pending notifications: %v", err)
		return
	}

	for _, n := range pending {
		var confirmation notify.OrderConfirmation
		if err := json.Unmarshal(n.Payload, &confirmation); err != nil {
			// Unreadable payloads can never succeed; drop them.
			log.Printf("dropping notification %v with unreadable payload: %v", n.ID, err)
			d.markProcessed(ctx, n.ID)
			continue
		}

		if err := d.sender.Send(confirmation); err != nil {
			log.Printf("failed to send notification for order %v: %v", n.OrderID, err)
			if err2 := d.repo.RecordFailure(ctx, n.ID); err2 != nil {
				log.Printf("failed to record notification failure id = %v: %v", n.ID, err2)
			}
			continue
		}

		d.publishConfirmed(ctx, n)
		d.markProcessed(ctx, n.ID)
	}
}

// publishConfirmed is best effort; the email is the primary side effect and
// has already been sent.
func (d *Dispatcher) publishConfirmed(ctx context.Context, n *Notification) {
	if d.writer == nil {
		return
	}

	msg := kafka.Message{
		Key:   []byte(n.OrderID), // order id for ordering
		Value: n.Payload,         // already JSON from the ledger
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.confirmed")},
		},
	}

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("failed to publish confirmed order %v: %v", n.OrderID, err)
	}
}

func (d *Dispatcher) markProcessed(ctx context.Context, id string) {
	if err := d.repo.MarkProcessed(ctx, id); err != nil {
		log.Printf("failed to mark notification as processed id = %v: %v", id, err)
	}
}
