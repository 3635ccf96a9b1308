package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

const publishTimeout = 5 * time.Second

type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
	Stop()
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type gcpTopic struct {
	*gcppubsub.Publisher
}

func (t gcpTopic) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return t.Publisher.Publish(ctx, msg)
}

// PubSub publishes to a single Google Cloud Pub/Sub topic; the routing key
// travels as the event_type attribute.
type PubSub struct {
	client *gcppubsub.Client
	topic  topicPublisher
	now    func() time.Time
}

// DialPubSub connects to project and binds topic (an id or a full
// projects/<p>/topics/<t> name).
func DialPubSub(ctx context.Context, project, topic string) (Publisher, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, errors.New("events: pubsub project is required")
	}
	name := topicResourceName(project, topic)
	if name == "" {
		return nil, errors.New("events: pubsub topic is required")
	}
	client, err := gcppubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	return &PubSub{client: client, topic: gcpTopic{client.Publisher(name)}, now: time.Now}, nil
}

func topicResourceName(project, topic string) string {
	t := strings.TrimSpace(topic)
	if t == "" {
		return ""
	}
	if strings.HasPrefix(t, "projects/") && strings.Contains(t, "/topics/") {
		return t
	}
	return fmt.Sprintf("projects/%s/topics/%s", project, t)
}

// Publish marshals payload and waits for the server ack.
func (p *PubSub) Publish(ctx context.Context, key string, payload any) error {
	if p == nil || p.topic == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", key, err)
	}
	msg := &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_type":   key,
			"content_type": "application/json",
			"published_at": p.now().UTC().Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if _, err := p.topic.Publish(publishCtx, msg).Get(publishCtx); err != nil {
		return fmt.Errorf("publish %s event: %w", key, err)
	}
	return nil
}

// Close flushes pending messages and releases the client.
func (p *PubSub) Close() error {
	if p == nil {
		return nil
	}
	if p.topic != nil {
		p.topic.Stop()
	}
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
