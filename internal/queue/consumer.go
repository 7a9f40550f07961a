package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// NewChangeLog returns a logger appending JSON lines to path, creating the
// parent directory when needed.
func NewChangeLog(path string) (*zap.Logger, error) {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
    }
    cfg := zap.NewProductionConfig()
    cfg.OutputPaths = []string{path}
    cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    cfg.DisableCaller = true
    cfg.DisableStacktrace = true
    return cfg.Build()
}

// StartChangeConsumer consumes the resource.changed queue and writes one
// entry per event to out. It reconnects with exponential backoff (capped at
// 30s) and only returns once ctx is cancelled.
func StartChangeConsumer(ctx context.Context, url string, out, log *zap.Logger) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("change consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, out, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn("change consumer: consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, out, log *zap.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("change consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(ChangesQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ChangesQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleMessage(d.Body, out); err != nil {
                log.Warn("change consumer: handle message failed", zap.Error(err))
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func handleMessage(body []byte, out *zap.Logger) error {
    var ev ResourceChangedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Resource == "" || ev.Operation == "" {
        return errors.New("event without resource or operation")
    }
    out.Info("resource changed",
        zap.String("resource", ev.Resource),
        zap.String("operation", ev.Operation),
        zap.String("id", ev.ID),
        zap.String("token_title", ev.TokenTitle),
        zap.Time("occurred_at", ev.OccurredAt))
    return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
