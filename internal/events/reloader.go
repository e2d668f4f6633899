// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/modelcache"
	"github.com/tomtom215/jobmatch/internal/models"
)

// defaultReloadTimeout bounds the reload triggered by one event.
const defaultReloadTimeout = time.Minute

// Loader loads the Production model of a type through the model cache.
type Loader interface {
	LoadProductionModel(ctx context.Context, mt models.ModelType) (*modelcache.Entry, error)
}

// ModelReloader loads the model named by each lifecycle event back into
// the cache, so the first request after a promotion, rollback or manual
// invalidation does not pay the registry round trip. It runs as a
// supervised service.
type ModelReloader struct {
	sub     message.Subscriber
	topic   string
	loader  Loader
	timeout time.Duration
	logger  zerolog.Logger
}

// NewModelReloader subscribes loader to topic on sub. An empty topic uses
// DefaultTopic.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewModelReloader(sub message.Subscriber, topic string, loader Loader, logger zerolog.Logger) *ModelReloader {
	if topic == "" {
		topic = DefaultTopic
	}
	return &ModelReloader{
		sub:     sub,
		topic:   topic,
		loader:  loader,
		timeout: defaultReloadTimeout,
		logger:  logger.With().Str("component", "model_reloader").Logger(),
	}
}

// Serve consumes events until ctx is canceled.
func (r *ModelReloader) Serve(ctx context.Context) error {
	messages, err := r.sub.Subscribe(ctx, r.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.topic, err)
	}
	r.logger.Info().Str("topic", r.topic).Msg("model reloader started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("lifecycle subscription closed")
			}
			if err := r.Handle(ctx, msg); err != nil {
				r.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("handle lifecycle event")
			}
			// Acked either way: the next event or the TTL repairs a missed reload.
			msg.Ack()
		}
	}
}

// Handle reloads the model types named by one event. An event without a
// model type reloads every type.
func (r *ModelReloader) Handle(ctx context.Context, msg *message.Message) error {
	ev, err := Decode(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	types := []models.ModelType{ev.ModelType}
	if ev.ModelType == "" {
		types = models.AllModelTypes()
	}

	var errs []error
	for _, mt := range types {
		log := r.logger.With().
			Str("event_type", string(ev.Type)).
			Str("model_type", string(mt)).
			Logger()

		entry, err := r.loader.LoadProductionModel(ctx, mt)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("reload %s: %w", mt, err))
		case entry == nil:
			log.Debug().Msg("no production model to reload")
		case ev.Version != "" && ev.ModelType == mt && entry.Version != ev.Version:
			// Another transition overtook this event; its own event follows.
			log.Debug().Str("event_version", ev.Version).Str("loaded_version", entry.Version).Msg("reloaded a newer version")
		default:
			log.Debug().Str("version", entry.Version).Msg("production model reloaded")
		}
	}
	return errors.Join(errs...)
}

// String implements fmt.Stringer for suture logging.
func (r *ModelReloader) String() string {
	return "model-reloader"
}
