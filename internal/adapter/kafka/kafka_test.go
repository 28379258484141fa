package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harithj/lanka-sitrep/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	alert := domain.AlertRecord{
		ID:       "alert_1772366400000",
		Title:    "Flood Warning",
		Category: "weather",
		Severity: "high",
		Location: "Ratnapura",
		IsActive: "TRUE",
	}

	msg, err := serializeToMessage(alert)
	require.NoError(t, err)

	assert.Equal(t, []byte("alert_1772366400000"), msg.Key)
	assert.Contains(t, string(msg.Value), `"title":"Flood Warning"`)
	assert.Contains(t, string(msg.Value), `"is_active":"TRUE"`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, kafkago.Header{Key: "category", Value: []byte("weather")}, msg.Headers[0])
	assert.Equal(t, kafkago.Header{Key: "severity", Value: []byte("high")}, msg.Headers[1])
	assert.Equal(t, kafkago.Header{Key: "location", Value: []byte("Ratnapura")}, msg.Headers[2])
}
