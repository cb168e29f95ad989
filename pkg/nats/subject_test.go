package nats

import (
	"testing"

	"chart-coach-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.message_created", Subject(events.TypeMessageCreated))
	assert.Equal(t, "events.session_deleted", Subject(events.TypeSessionDeleted))
}

func TestNewPublisherRequiresURL(t *testing.T) {
	_, err := NewPublisher("")
	assert.ErrorContains(t, err, "empty")

	_, err = NewSubscriber("")
	assert.ErrorContains(t, err, "empty")
}
