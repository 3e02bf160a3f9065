// Package activity records what happened to job wizard sessions in a
// JetStream stream and reads it back for `recruitdash job history`.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/recruitdash/recruitdash/internal/logger"
	inats "github.com/recruitdash/recruitdash/internal/nats"
)

// Event types.
const (
	JobCreated     = "job_created"
	DraftDiscarded = "draft_discarded"
	DraftResumed   = "draft_resumed"
)

// Event is one entry in the activity log.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Profile   string    `json:"profile"`
	Type      string    `json:"type"`
	JobID     int64     `json:"job_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Step      string    `json:"step,omitempty"`
}

// Log publishes and replays activity events.
type Log struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	log    *logger.Logger
	now    func() time.Time
}

// Open sets up the activity stream.
func Open(ctx context.Context, js jetstream.JetStream) (*Log, error) {
	stream, err := inats.SetupActivityStream(ctx, js)
	if err != nil {
		return nil, fmt.Errorf("setting up activity stream: %w", err)
	}
	return &Log{js: js, stream: stream, log: logger.Named("activity"), now: time.Now}, nil
}

// Record appends an event, stamping its time when unset.
func (l *Log) Record(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = l.now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := inats.SubjectForEvent(subjectToken(ev.Profile), ev.Type)
	ack, err := l.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	l.log.Debug("recorded %s seq=%d", ev.Type, ack.Sequence)
	return nil
}

// History returns a profile's events, newest first, at most limit of them
// (all when limit <= 0).
func (l *Log) History(ctx context.Context, profile string, limit int) ([]Event, error) {
	consumer, err := l.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject:     inats.SubjectForProfile(subjectToken(profile)),
		DeliverPolicy:     jetstream.DeliverAllPolicy,
		AckPolicy:         jetstream.AckNonePolicy,
		InactiveThreshold: time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	const batchSize = 500
	var events []Event
	for {
		batch, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}
		n := 0
		for msg := range batch.Messages() {
			n++
			var ev Event
			if err := json.Unmarshal(msg.Data(), &ev); err != nil {
				l.log.Warn("skipping malformed activity event on %s: %v", msg.Subject(), err)
				continue
			}
			if ev.ID == "" {
				if meta, err := msg.Metadata(); err == nil {
					ev.ID = strconv.FormatUint(meta.Sequence.Stream, 10)
				}
			}
			events = append(events, ev)
		}
		if n == 0 {
			break
		}
	}

	slices.Reverse(events)
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// subjectToken makes a profile name safe to use as one subject token.
func subjectToken(profile string) string {
	if s := slug.Make(profile); s != "" {
		return s
	}
	return "default"
}

// Summary counts events by type.
type Summary struct {
	Created   int
	Discarded int
	Resumed   int
	LastJob   *Event
}

// Summarize reduces events (in any order) to counts and the latest
// created job.
func Summarize(events []Event) Summary {
	var s Summary
	for i := range events {
		ev := events[i]
		switch ev.Type {
		case JobCreated:
			s.Created++
			if s.LastJob == nil || ev.Timestamp.After(s.LastJob.Timestamp) {
				s.LastJob = &ev
			}
		case DraftDiscarded:
			s.Discarded++
		case DraftResumed:
			s.Resumed++
		}
	}
	return s
}
