package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	sessionID := uuid.New()
	messageID := uuid.New()
	evt := MessageCreated(sessionID, messageID, "coach", "analysis", "tldr")

	data, err := Encode(evt)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeMessageCreated, got.EventType())
	assert.True(t, evt.Timestamp().Equal(got.Timestamp()))
	assert.Equal(t, sessionID.String(), got.Payload()["session_id"])
	assert.Equal(t, messageID.String(), got.Payload()["message_id"])
	assert.Equal(t, "tldr", got.Payload()["mode"])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"data":{}}`))
	assert.ErrorContains(t, err, "missing type")
}

func TestTurnFailed(t *testing.T) {
	evt := TurnFailed(uuid.New(), uuid.New(), "analysis", "vision provider timed out")
	assert.Equal(t, TypeTurnFailed, evt.EventType())
	assert.Equal(t, "analysis", evt.Payload()["kind"])
	assert.False(t, evt.Timestamp().IsZero())
}
