package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRoomGauges(t *testing.T) {
	m := NewMetrics()
	m.RoomOpened()
	m.RoomOpened()
	m.RoomClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoomsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoomsCreated))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RoomOpened()
	m.TimerStarted()
	m.Event("startGame")
	m.EventError("startGame", "not_found")
	assert.NotNil(t, m.Handler())
}
