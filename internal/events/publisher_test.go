package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatermillEventPublisher_Publish(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(ctx, "notifications")
	require.NoError(t, err)

	publisher := NewWatermillEventPublisher(pubSub, "notifications", testLogger())
	sharedAt := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	event := NewAssessmentSharedEvent(AssessmentSharedEvent{
		ShareID:      "share-1",
		AssessmentID: "assessment-1",
		PatientID:    "patient-1",
		DoctorID:     "doctor-1",
		Language:     "English",
		TotalScore:   27,
		SharedAt:     sharedAt,
	})

	require.NoError(t, publisher.PublishNotificationEvent(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(EventAssessmentShared), msg.Metadata.Get("event_type"))
		assert.Equal(t, "doctor-1", msg.Metadata.Get("recipient_id"))
		assert.Equal(t, "2024-03-15T09:00:00Z", msg.Metadata.Get("timestamp"))

		var decoded struct {
			Type EventType             `json:"type"`
			Data AssessmentSharedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, EventAssessmentShared, decoded.Type)
		assert.Equal(t, 27, decoded.Data.TotalScore)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNewKafkaEventPublisher_NoBrokers(t *testing.T) {
	_, err := NewKafkaEventPublisher(PublisherConfig{TopicName: "x", Logger: testLogger()})
	assert.Error(t, err)
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	at := time.Now()
	require.NoError(t, mock.PublishNotificationEvent(ctx, NewScoreDiscrepancyEvent(ScoreDiscrepancyEvent{
		PatientID:   "p",
		ServerTotal: 20,
		ClientTotal: 25,
		Difference:  5,
	}, at)))
	require.NoError(t, mock.PublishNotificationEvent(ctx, NewAssessmentSubmittedEvent(AssessmentSubmittedEvent{
		AssessmentID: "a",
		SubmittedAt:  at,
	})))

	published := mock.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, EventScoreDiscrepancy, published[0].Type)
	assert.Equal(t, EventAssessmentSubmitted, published[1].Type)
	assert.NotEqual(t, published[0].ID, published[1].ID)
	assert.Equal(t, "mmse-service", published[1].Source)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}

func TestDiscardEventPublisher(t *testing.T) {
	pub := NewDiscardEventPublisher(testLogger())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, pub.PublishNotificationEvent(ctx, NewAssessmentSubmittedEvent(AssessmentSubmittedEvent{
			AssessmentID: "a",
			SubmittedAt:  time.Now(),
		})))
	}
	assert.NoError(t, pub.Close())
}
