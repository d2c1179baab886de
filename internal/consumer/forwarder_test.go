package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xjzhong-027/sleepDetect/internal/history"
	"github.com/xjzhong-027/sleepDetect/internal/models"
	"github.com/xjzhong-027/sleepDetect/internal/publisher"
	"github.com/xjzhong-027/sleepDetect/internal/store"
	"go.uber.org/zap"
)

// fakeSource 手动推送状态
type fakeSource struct {
	obs   *store.Observable[models.MonitoringState]
	state models.MonitoringState
}

func newFakeSource() *fakeSource {
	return &fakeSource{obs: store.NewObservable[models.MonitoringState](), state: models.NewMonitoringState()}
}

func (f *fakeSource) State() models.MonitoringState { return f.state }

func (f *fakeSource) Subscribe() (<-chan models.MonitoringState, func()) { return f.obs.Subscribe() }

type recordingSink struct {
	name string
	err  error

	mu     sync.Mutex
	events []publisher.Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(ctx context.Context, e publisher.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) kinds() []publisher.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]publisher.EventKind, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Kind)
	}
	return out
}

func runForwarder(t *testing.T, f *TelemetryForwarder) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, f.Run(ctx))
	}()
	return func() {
		cancel()
		<-done
	}
}

// waitSubscribed 等待转发器完成订阅
func waitSubscribed(t *testing.T, src *fakeSource) {
	require.Eventually(t, func() bool { return src.obs.Subscribers() == 1 }, time.Second, time.Millisecond)
}

func TestTelemetryForwarder_ForwardsAndRecords(t *testing.T) {
	src := newFakeSource()
	sink := &recordingSink{name: "memory"}
	recorder := history.NewRecorder(0, 0)
	f := NewTelemetryForwarder(src, recorder, []publisher.Sink{sink}, ForwarderOptions{}, zap.NewNop())

	stop := runForwarder(t, f)
	waitSubscribed(t, src)

	active := models.NewMonitoringState()
	active.IsMonitoring = true
	active.SessionID = "s1"
	src.obs.Publish(active)
	require.Eventually(t, func() bool { return len(sink.kinds()) == 1 }, time.Second, time.Millisecond)

	active.CurrentPosture = "正常"
	active.CurrentEmotion = "平静"
	active.NightWakeCount = 1
	active.UpdatedAt = time.Now()
	src.obs.Publish(active)
	require.Eventually(t, func() bool { return len(sink.kinds()) == 2 }, time.Second, time.Millisecond)

	idle := active
	idle.IsMonitoring = false
	src.obs.Publish(idle)
	require.Eventually(t, func() bool { return len(sink.kinds()) == 3 }, time.Second, time.Millisecond)
	stop()

	assert.Equal(t, []publisher.EventKind{
		publisher.EventSessionStarted,
		publisher.EventTelemetry,
		publisher.EventSessionStopped,
	}, sink.kinds())
	assert.Equal(t, 1, recorder.Len())

	m := f.Metrics()
	assert.Equal(t, int64(3), m.SnapshotsReceived)
	assert.Equal(t, int64(3), m.EventsForwarded)
	assert.Equal(t, int64(1), m.HistoryRecorded)
}

func TestTelemetryForwarder_SinkFailureIsCounted(t *testing.T) {
	src := newFakeSource()
	bad := &recordingSink{name: "redis", err: errors.New("connection refused")}
	good := &recordingSink{name: "mqtt"}
	f := NewTelemetryForwarder(src, nil, []publisher.Sink{bad, good}, ForwarderOptions{PublishTimeout: time.Second}, zap.NewNop())

	stop := runForwarder(t, f)
	waitSubscribed(t, src)

	st := models.NewMonitoringState()
	st.IsMonitoring = true
	src.obs.Publish(st)
	require.Eventually(t, func() bool { return f.Metrics().EventsFailed == 1 }, time.Second, time.Millisecond)
	stop()

	assert.Len(t, good.kinds(), 1)
	assert.Equal(t, int64(1), f.Metrics().SinkErrors["redis"])
	assert.Zero(t, f.Metrics().EventsForwarded)
}

func TestTelemetryForwarder_NewSessionResetsHistory(t *testing.T) {
	src := newFakeSource()
	recorder := history.NewRecorder(0, 0)
	recorder.Record(models.TelemetrySample{SessionID: "old", Posture: "正常", Emotion: "平静", NightWakeCount: 1})
	f := NewTelemetryForwarder(src, recorder, nil, ForwarderOptions{}, zap.NewNop())

	stop := runForwarder(t, f)
	waitSubscribed(t, src)

	st := models.NewMonitoringState()
	st.IsMonitoring = true
	st.SessionID = "new"
	src.obs.Publish(st)
	require.Eventually(t, func() bool { return f.Metrics().SnapshotsReceived == 1 }, time.Second, time.Millisecond)
	stop()

	assert.Zero(t, recorder.Len())
}

func TestTelemetryForwarder_SourceClosed(t *testing.T) {
	src := newFakeSource()
	f := NewTelemetryForwarder(src, nil, nil, ForwarderOptions{}, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- f.Run(context.Background()) }()
	waitSubscribed(t, src)

	src.obs.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop after source closed")
	}
}
