// Package service holds outbound integrations used by the HTTP layer.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sony/gobreaker"
    "go.uber.org/zap"

    "github.com/iliyamo/resource-router/internal/queue"
)

// Publisher publishes resource change events to RabbitMQ. Each publish dials
// its own connection; a circuit breaker stops dialing for a while after
// repeated failures so a broker outage does not slow every write down.
type Publisher struct {
    url     string
    log     *zap.Logger
    breaker *gobreaker.CircuitBreaker
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
    return &Publisher{
        url: url,
        log: log,
        breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
            Name:        "rabbitmq",
            MaxRequests: 1,
            Timeout:     30 * time.Second,
            ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 3 },
            OnStateChange: func(name string, from, to gobreaker.State) {
                log.Warn("circuit breaker state changed",
                    zap.String("breaker", name),
                    zap.String("from", from.String()),
                    zap.String("to", to.String()))
            },
        }),
    }
}

// PublishChange delivers ev to the durable resource.changed queue as a
// persistent JSON message. While the breaker is open it fails fast with
// gobreaker.ErrOpenState.
func (p *Publisher) PublishChange(ctx context.Context, ev queue.ResourceChangedEvent) error {
    _, err := p.breaker.Execute(func() (interface{}, error) {
        return nil, p.publish(ctx, ev)
    })
    return err
}

func (p *Publisher) publish(ctx context.Context, ev queue.ResourceChangedEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue.ChangesQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("rabbitmq queue declare: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    ev.OccurredAt,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                 // default exchange
        queue.ChangesQueue, // routing key = queue name
        false,              // mandatory
        false,              // immediate
        pub,
    ); err != nil {
        return fmt.Errorf("rabbitmq publish: %w", err)
    }
    return nil
}
