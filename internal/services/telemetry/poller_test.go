package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGateway потокобезопасно считает запросы к /obd2.
type countingGateway struct {
	calls    atomic.Int64
	response json.RawMessage
	err      error
}

func (g *countingGateway) Call(_ context.Context, _, _ string, _ any, _ url.Values) (json.RawMessage, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}

func newTestService(gw Gateway) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewWithInterval(gw, logger, 10*time.Millisecond)
}

func TestConnectStartsPolling(t *testing.T) {
	gw := &countingGateway{response: json.RawMessage(`{"RPM":2500,"Speed":"90","EngineTemp":88.5,"DTC":["P0301"]}`)}
	svc := newTestService(gw)
	defer svc.Disconnect("sid-1")

	svc.Connect("sid-1")

	assert.True(t, svc.Connected("sid-1"))
	require.Eventually(t, func() bool {
		return svc.Status("sid-1").Snapshot != nil
	}, time.Second, 5*time.Millisecond)

	status := svc.Status("sid-1")
	assert.True(t, status.Connected)
	assert.Equal(t, "2500", status.Snapshot.RPM)
	assert.Equal(t, "90", status.Snapshot.Speed)
	assert.Equal(t, "88.5", status.Snapshot.EngineTemp)
	assert.Equal(t, []string{"P0301"}, status.Snapshot.DTC)
	assert.NotEmpty(t, status.UpdatedAt)
}

func TestDisconnectStopsPolling(t *testing.T) {
	gw := &countingGateway{response: json.RawMessage(`{"RPM":1000}`)}
	svc := newTestService(gw)

	svc.Connect("sid-1")
	require.Eventually(t, func() bool {
		return gw.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	svc.Disconnect("sid-1")
	assert.False(t, svc.Connected("sid-1"))

	// После остановки счетчик запросов замирает
	time.Sleep(30 * time.Millisecond)
	after := gw.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, gw.calls.Load(), "опрос должен останавливаться при отключении")

	assert.False(t, svc.Status("sid-1").Connected)
}

func TestConnectIsIdempotent(t *testing.T) {
	gw := &countingGateway{response: json.RawMessage(`{}`)}
	svc := newTestService(gw)
	defer svc.Disconnect("sid-1")

	svc.Connect("sid-1")
	svc.Connect("sid-1")

	svc.mu.Lock()
	count := len(svc.pollers)
	svc.mu.Unlock()
	assert.Equal(t, 1, count, "повторное подключение не создает второй опросчик")
}

func TestPollErrorKeepsUserMessage(t *testing.T) {
	gw := &countingGateway{err: errors.New("dial tcp: connection refused")}
	svc := newTestService(gw)
	defer svc.Disconnect("sid-1")

	svc.Connect("sid-1")
	require.Eventually(t, func() bool {
		return svc.Status("sid-1").Error != ""
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, ErrDeviceUnreachable, svc.Status("sid-1").Error)
}

// sequenceGateway отдает ответы по очереди, повторяя последний.
type sequenceGateway struct {
	calls     atomic.Int64
	responses []json.RawMessage
}

func (g *sequenceGateway) Call(_ context.Context, _, _ string, _ any, _ url.Values) (json.RawMessage, error) {
	idx := int(g.calls.Add(1)) - 1
	if idx >= len(g.responses) {
		idx = len(g.responses) - 1
	}
	return g.responses[idx], nil
}

func TestDomainErrorKeepsLastSnapshot(t *testing.T) {
	gw := &sequenceGateway{responses: []json.RawMessage{
		json.RawMessage(`{"RPM":2500,"Speed":"90"}`),
		json.RawMessage(`{"error":"OBD2 non connecté"}`),
	}}
	svc := newTestService(gw)
	defer svc.Disconnect("sid-1")

	svc.Connect("sid-1")
	require.Eventually(t, func() bool {
		return svc.Status("sid-1").Error != ""
	}, time.Second, 5*time.Millisecond)

	status := svc.Status("sid-1")
	assert.Equal(t, "OBD2 non connecté", status.Error)
	require.NotNil(t, status.Snapshot, "ошибочный тик не стирает последний удачный снимок")
	assert.Equal(t, "2500", status.Snapshot.RPM)
	assert.Equal(t, "90", status.Snapshot.Speed)
}

func TestDecodeSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantRPM string
		wantDTC []string
		wantErr string
	}{
		{
			name:    "числа и строки вперемешку",
			raw:     `{"RPM":2500,"Speed":"90","DTC":["P0301","P0420"]}`,
			wantRPM: "2500",
			wantDTC: []string{"P0301", "P0420"},
		},
		{
			name:    "DTC одной строкой",
			raw:     `{"RPM":800,"DTC":"P0100"}`,
			wantRPM: "800",
			wantDTC: []string{"P0100"},
		},
		{
			name:    "отсутствующие поля дают пустые строки",
			raw:     `{}`,
			wantRPM: "",
			wantDTC: nil,
		},
		{
			name:    "доменная ошибка бэкенда",
			raw:     `{"error":"OBD2 non connecté"}`,
			wantErr: "OBD2 non connecté",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot, errMsg := decodeSnapshot(json.RawMessage(tt.raw))
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errMsg)
				assert.Nil(t, snapshot)
				return
			}
			require.NotNil(t, snapshot)
			assert.Equal(t, tt.wantRPM, snapshot.RPM)
			assert.Equal(t, tt.wantDTC, snapshot.DTC)
		})
	}
}
