package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// ActivityStream holds wizard activity events for every profile.
	ActivityStream = "recruitdash_activity"
	// DraftBucket is the key-value bucket holding draft snapshots.
	DraftBucket = "recruitdash_drafts"

	activityRetention = 90 * 24 * time.Hour
)

// SubjectForProfile matches every activity event of a profile.
// Example: "recruitdash.activity.acme.>"
func SubjectForProfile(profile string) string {
	return fmt.Sprintf("recruitdash.activity.%s.>", profile)
}

// SubjectForEvent is the subject for one event type of a profile.
// Example: "recruitdash.activity.acme.job_created"
func SubjectForEvent(profile, eventType string) string {
	return fmt.Sprintf("recruitdash.activity.%s.%s", profile, eventType)
}

// SetupActivityStream creates or updates the activity stream.
func SetupActivityStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     ActivityStream,
		Subjects: []string{"recruitdash.activity.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   activityRetention,
	})
}

// SetupDraftBucket creates or updates the draft snapshot bucket. A few
// revisions are kept so `draft show --diff` can compare with the previous one.
func SetupDraftBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      DraftBucket,
		Description: "job wizard draft snapshots",
		History:     5,
		Storage:     jetstream.FileStorage,
	})
}
