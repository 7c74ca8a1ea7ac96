package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/notification"
)

// Local-mode notifier: consumes notifications from Kafka and emails the
// configured admin recipients.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	notificationTopic := getEnv("NOTIFICATION_EVENTS_TOPIC", "notification-events")

	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	smtpFrom := getEnv("SMTP_FROM", "alerts@storefront.local")
	recipients := splitNonEmpty(os.Getenv("ALERT_RECIPIENTS"))

	log.Println("[Notifier] Starting notifier...")
	log.Printf("[Notifier] Kafka: %v, topic: %s", kafkaBrokers, notificationTopic)
	log.Printf("[Notifier] SMTP: %s:%s, recipients: %v", smtpHost, smtpPort, recipients)

	sender := email.NewService(smtpHost, smtpPort, smtpFrom)
	handler := notification.NewHandler(sender, recipients)

	consumer := kafka.NewConsumer(kafkaBrokers, notificationTopic, "notifier")
	defer consumer.Close()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("[Notifier] Shutting down...")
		cancel()
	}()

	if err := consumer.Consume(ctx, handler.HandleMessage); err != nil && ctx.Err() == nil {
		log.Fatalf("[Notifier] Consumer error: %v", err)
	}
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
