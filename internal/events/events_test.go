// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/modelcache"
	"github.com/tomtom215/jobmatch/internal/models"
)

// recordingLoader is a Loader that records which types were reloaded.
type recordingLoader struct {
	mu       sync.Mutex
	loaded   []models.ModelType
	versions map[models.ModelType]string
	fail     map[models.ModelType]bool
}

func (l *recordingLoader) LoadProductionModel(_ context.Context, mt models.ModelType) (*modelcache.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = append(l.loaded, mt)
	if l.fail[mt] {
		return nil, errors.New("registry unavailable")
	}
	v, ok := l.versions[mt]
	if !ok {
		return nil, nil
	}
	return &modelcache.Entry{Version: v}, nil
}

func (l *recordingLoader) snapshot() []models.ModelType {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ModelType(nil), l.loaded...)
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                             { return nil }

func TestEncodeDecode(t *testing.T) {
	ev := NewEvent(EventPromoted, models.JobPayPrediction, "3")
	msg, err := Encode(ev)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if msg.UUID != ev.EventID {
		t.Errorf("UUID = %s, want %s", msg.UUID, ev.EventID)
	}
	if msg.Metadata.Get("event_type") != "promoted" {
		t.Errorf("metadata = %v", msg.Metadata)
	}
	got, err := Decode(msg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Type != ev.Type || got.ModelType != ev.ModelType || got.Version != "3" || !got.At.Equal(ev.At) {
		t.Errorf("Decode = %+v, want %+v", got, ev)
	}
}

func TestModelReloader_Handle(t *testing.T) {
	tests := []struct {
		name    string
		event   ModelLifecycleEvent
		fail    models.ModelType
		want    []models.ModelType
		wantErr bool
	}{
		{
			name:  "promotion reloads that type",
			event: NewEvent(EventPromoted, models.JobPayPrediction, "3"),
			want:  []models.ModelType{models.JobPayPrediction},
		},
		{
			name:  "rollback reloads that type",
			event: NewEvent(EventRolledBack, models.JobRecommendation, "2"),
			want:  []models.ModelType{models.JobRecommendation},
		},
		{
			name:  "invalidate all reloads every type",
			event: NewEvent(EventCacheInvalidated, "", ""),
			want:  models.AllModelTypes(),
		},
		{
			name:    "load failure is reported",
			event:   NewEvent(EventPromoted, models.StudentRecommendation, "1"),
			fail:    models.StudentRecommendation,
			want:    []models.ModelType{models.StudentRecommendation},
			wantErr: true,
		},
		{
			name:    "one failing type does not stop the rest",
			event:   NewEvent(EventCacheInvalidated, "", ""),
			fail:    models.JobRecommendation,
			want:    models.AllModelTypes(),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &recordingLoader{
				versions: map[models.ModelType]string{models.JobPayPrediction: "3", models.JobRecommendation: "2"},
				fail:     map[models.ModelType]bool{tt.fail: true},
			}
			r := NewModelReloader(nil, "", loader, zerolog.Nop())
			msg, _ := Encode(tt.event)

			err := r.Handle(context.Background(), msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Handle err = %v, wantErr %v", err, tt.wantErr)
			}
			got := loader.snapshot()
			if len(got) != len(tt.want) {
				t.Fatalf("reloaded %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("reloaded %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestModelReloader_HandleMalformed(t *testing.T) {
	loader := &recordingLoader{}
	r := NewModelReloader(nil, "", loader, zerolog.Nop())
	if err := r.Handle(context.Background(), message.NewMessage("x", []byte("{not json"))); err == nil {
		t.Fatal("expected decode error")
	}
	if got := loader.snapshot(); len(got) != 0 {
		t.Errorf("malformed event triggered reloads: %v", got)
	}
}

func TestGoChannel_EndToEnd(t *testing.T) {
	pubsub := NewGoChannel(zerolog.Nop())
	defer pubsub.Close()

	loader := &recordingLoader{versions: map[models.ModelType]string{models.StudentRecommendation: "4"}}
	r := NewModelReloader(pubsub, "", loader, zerolog.Nop())
	pub := NewTopicPublisher(pubsub, "", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	// gochannel drops messages published before the subscription exists, so
	// keep publishing until the reloader has seen one.
	deadline := time.Now().Add(5 * time.Second)
	for {
		pub.Publish(ctx, NewEvent(EventPromoted, models.StudentRecommendation, "4"))
		if got := loader.snapshot(); len(got) > 0 {
			if got[0] != models.StudentRecommendation {
				t.Errorf("reloaded %s", got[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event never reached the reloader")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop on cancel")
	}
	if r.String() != "model-reloader" {
		t.Errorf("String() = %q", r.String())
	}
}

func TestTopicPublisher_FailureIsNotFatal(t *testing.T) {
	pub := NewTopicPublisher(failingPublisher{}, "t", zerolog.Nop())
	pub.Publish(context.Background(), NewEvent(EventPromoted, models.JobPayPrediction, "1"))
	Discard{}.Publish(context.Background(), ModelLifecycleEvent{})
}
