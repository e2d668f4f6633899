// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package events carries model lifecycle notifications over watermill.
//
// The orchestrator publishes a ModelLifecycleEvent whenever the serving model
// of a type changes or its cache is dropped, after it has evicted its own
// cache entry. ModelReloader consumes them and loads the new Production
// model straight back into the cache. The in-process transport is a
// watermill gochannel pubsub; any message.Publisher and message.Subscriber
// pair can replace it.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/logging"
	"github.com/tomtom215/jobmatch/internal/models"
)

// DefaultTopic is the lifecycle topic name.
const DefaultTopic = "model.lifecycle"

// EventType names a lifecycle transition.
type EventType string

const (
	EventPromoted         EventType = "promoted"
	EventRolledBack       EventType = "rolled_back"
	EventCacheInvalidated EventType = "cache_invalidated"
)

// ModelLifecycleEvent is the message payload. An empty ModelType means every
// model type.
type ModelLifecycleEvent struct {
	EventID   string           `json:"event_id"`
	Type      EventType        `json:"type"`
	ModelType models.ModelType `json:"model_type,omitempty"`
	Version   string           `json:"version,omitempty"`
	At        time.Time        `json:"at"`
}

// NewEvent stamps an event with an ID and the current time.
func NewEvent(typ EventType, mt models.ModelType, version string) ModelLifecycleEvent {
	return ModelLifecycleEvent{
		EventID:   uuid.NewString(),
		Type:      typ,
		ModelType: mt,
		Version:   version,
		At:        time.Now().UTC(),
	}
}

// Encode serializes ev into a watermill message.
func Encode(ev ModelLifecycleEvent) (*message.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("serialize lifecycle event: %w", err)
	}
	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set("event_type", string(ev.Type))
	msg.Metadata.Set("model_type", string(ev.ModelType))
	return msg, nil
}

// Decode parses a lifecycle message payload.
func Decode(msg *message.Message) (ModelLifecycleEvent, error) {
	var ev ModelLifecycleEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("deserialize lifecycle event %s: %w", msg.UUID, err)
	}
	return ev, nil
}

// NewGoChannel creates the in-process pubsub used when no external broker
// is configured.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewGoChannel(logger zerolog.Logger) *gochannel.GoChannel {
	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger(logger.With().Str("component", "events").Logger()))
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, wmLogger)
}

// Publisher is what the orchestrator needs to announce lifecycle changes.
type Publisher interface {
	Publish(ctx context.Context, ev ModelLifecycleEvent)
}

// Discard drops every event. Used when events are disabled.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(context.Context, ModelLifecycleEvent) {}

// TopicPublisher publishes lifecycle events on one topic. Publish failures
// are logged and never returned: a lost event only leaves the cache cold
// until the next request loads it.
type TopicPublisher struct {
	pub    message.Publisher
	topic  string
	logger zerolog.Logger
}

// NewTopicPublisher wraps pub. An empty topic uses DefaultTopic.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTopicPublisher(pub message.Publisher, topic string, logger zerolog.Logger) *TopicPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &TopicPublisher{
		pub:    pub,
		topic:  topic,
		logger: logger.With().Str("component", "event_publisher").Str("topic", topic).Logger(),
	}
}

// Publish implements Publisher.
func (p *TopicPublisher) Publish(ctx context.Context, ev ModelLifecycleEvent) {
	msg, err := Encode(ev)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("drop lifecycle event")
		return
	}
	msg.SetContext(ctx)
	if err := p.pub.Publish(p.topic, msg); err != nil {
		p.logger.Warn().Err(err).
			Str("event_type", string(ev.Type)).
			Str("model_type", string(ev.ModelType)).
			Msg("publish lifecycle event failed")
		return
	}
	p.logger.Debug().
		Str("event_id", ev.EventID).
		Str("event_type", string(ev.Type)).
		Str("model_type", string(ev.ModelType)).
		Str("version", ev.Version).
		Msg("lifecycle event published")
}
