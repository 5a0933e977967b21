package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	"go-reseller-ws/internal/notify"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"success acks", nil, Ack},
		{"poison drops", errors.Wrap(ErrPoison, "bad payload"), Drop},
		{"storage failure requeues", errors.New("connection refused"), Requeue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dispatch(context.Background(), func(context.Context, []byte) error { return tt.err }, []byte("{}"))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelayTo(t *testing.T) {
	rec := &notify.Recorder{}
	relay := RelayTo(rec)

	body, err := json.Marshal(notify.Event{
		Type:  notify.EventOrderSettled,
		Level: notify.LevelSuccess,
		Scope: "reseller-1",
		Data:  map[string]interface{}{"total": 500000},
	})
	require.NoError(t, err)
	require.NoError(t, relay(context.Background(), body))

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventOrderSettled, events[0].Type)
	assert.Equal(t, "reseller-1", events[0].Scope)
	assert.Equal(t, float64(500000), events[0].Data["total"])

	assert.Equal(t, Drop, Dispatch(context.Background(), relay, []byte("not json")))
	assert.Equal(t, Drop, Dispatch(context.Background(), relay, []byte(`{"scope":"x"}`)))
	assert.Len(t, rec.Events(), 1)
}
