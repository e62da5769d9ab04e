package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSaleEvent(t *testing.T) {
	b, err := json.Marshal(validMessage())
	require.NoError(t, err)

	// go-redis 读回的字段值是 string
	msg, err := parseSaleEvent(map[string]interface{}{"event_id": "evt-1", "payload": string(b)})
	require.NoError(t, err)
	require.Equal(t, uint(12), msg.SaleID)
	require.True(t, msg.TotalPrice.Equal(validMessage().TotalPrice))
	require.True(t, msg.OccurredAt.Equal(validMessage().OccurredAt))

	msg, err = parseSaleEvent(map[string]interface{}{"payload": b})
	require.NoError(t, err)
	require.Equal(t, "evt-1", msg.EventID)
}

func TestParseSaleEventRejectsBadEntries(t *testing.T) {
	invalid := validMessage()
	invalid.Quantity = 0
	b, err := json.Marshal(invalid)
	require.NoError(t, err)

	cases := map[string]map[string]interface{}{
		"missing payload": {"event_id": "evt-1"},
		"not json":        {"payload": "{"},
		"invalid message": {"payload": string(b)},
		"unsupported":     {"payload": 1.5},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseSaleEvent(values)
			require.Error(t, err)
		})
	}
}
