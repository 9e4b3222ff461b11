// Package service contains collaborators shared by the HTTP handlers that
// talk to infrastructure outside the database.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/movie-tracker/internal/queue"
)

// ActivityPublisher publishes MovieActivityEvent messages to the
// movie.activity queue.  A disabled publisher accepts every event and
// sends nothing.
type ActivityPublisher struct {
    url     string
    enabled bool
    timeout time.Duration
}

// NewActivityPublisher returns a publisher for the broker at url.
func NewActivityPublisher(url string, enabled bool) *ActivityPublisher {
    return &ActivityPublisher{url: url, enabled: enabled, timeout: 5 * time.Second}
}

// Enabled reports whether events leave the process.
func (p *ActivityPublisher) Enabled() bool {
    return p != nil && p.enabled
}

// Publish sends ev as a persistent JSON message.  Errors are logged and
// returned so the caller can ignore them without interrupting the request.
func (p *ActivityPublisher) Publish(ctx context.Context, ev queue.MovieActivityEvent) error {
    if !p.Enabled() {
        return nil
    }
    if err := p.publish(ctx, ev); err != nil {
        log.Warn().Err(err).Str("type", ev.Type).Uint64("movie_id", ev.MovieID).Msg("activity publish failed")
        return err
    }
    return nil
}

func (p *ActivityPublisher) publish(ctx context.Context, ev queue.MovieActivityEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Dial:      amqp.DefaultDial(p.timeout),
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
    })
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(queue.ActivityQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("rabbitmq queue declare: %w", err)
    }

    ctx, cancel := context.WithTimeout(ctx, p.timeout)
    defer cancel()
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.EventID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue.ActivityQueueName, false, false, pub); err != nil {
        return fmt.Errorf("rabbitmq publish: %w", err)
    }
    return nil
}
