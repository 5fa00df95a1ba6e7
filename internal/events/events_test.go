package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	msg, err := Encode(Event{
		Type:          TypeValidationAttempt,
		OrderID:       "order-1",
		DeliveryLegID: "leg-1",
		ActorID:       "driver-x",
		Success:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("leg-1"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, string(TypeValidationAttempt), string(msg.Headers[0].Value))
	assert.False(t, msg.Time.IsZero())

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "leg-1", decoded["delivery_leg_id"])
	assert.Equal(t, true, decoded["success"])
	assert.NotContains(t, decoded, "code")
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "audit")
	assert.Error(t, err)
	_, err = NewKafkaPublisher([]string{"localhost:9092"}, " ")
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "delivery-code-audit")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeCodeDispatched}))
	assert.NoError(t, p.Close())
}
