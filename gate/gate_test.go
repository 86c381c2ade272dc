package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/movienight/movienight/state"
	"github.com/movienight/movienight/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type configSource struct {
	mu    sync.Mutex
	cfg   *store.AppConfig
	err   error
	calls int32
	wait  chan struct{}
}

func (s *configSource) LatestConfig(context.Context) (*store.AppConfig, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.wait != nil {
		<-s.wait
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cfg, s.err
}

func (s *configSource) set(cfg *store.AppConfig, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg, s.err = cfg, err
}

func (s *configSource) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *store.AppConfig
		version  string
		expected state.BlockState
	}{
		{
			name:     "nil config",
			version:  "1.0.0",
			expected: state.BlockState{},
		},
		{
			name:     "force stop wins over versions",
			cfg:      &store.AppConfig{ForceStop: true, MinAppVersion: "9.0.0", LatestAppVersion: "9.0.0"},
			version:  "1.0.0",
			expected: state.BlockState{Blocked: true, Reason: state.ReasonMaintenance, Message: MaintenanceMessage},
		},
		{
			name:     "force stop with server message",
			cfg:      &store.AppConfig{ForceStop: true, ForceMessage: "Back at 5pm"},
			version:  "1.0.0",
			expected: state.BlockState{Blocked: true, Reason: state.ReasonMaintenance, Message: "Back at 5pm"},
		},
		{
			name:     "below minimum",
			cfg:      &store.AppConfig{MinAppVersion: "1.1.0", LatestAppVersion: "1.2.0"},
			version:  "1.0.0",
			expected: state.BlockState{Blocked: true, Reason: state.ReasonUpdateRequired, Message: UpdateRequiredMessage},
		},
		{
			name:     "at minimum below latest",
			cfg:      &store.AppConfig{MinAppVersion: "1.1.0", LatestAppVersion: "1.2.0"},
			version:  "1.1.0",
			expected: state.BlockState{Reason: state.ReasonUpdateAvailable, Message: "1.2.0"},
		},
		{
			name:     "up to date",
			cfg:      &store.AppConfig{MinAppVersion: "1.1.0", LatestAppVersion: "1.2.0"},
			version:  "1.2.0",
			expected: state.BlockState{},
		},
		{
			name:     "numeric not lexicographic",
			cfg:      &store.AppConfig{MinAppVersion: "1.9.0"},
			version:  "1.10.0",
			expected: state.BlockState{},
		},
		{
			name:     "empty versions are ignored",
			cfg:      &store.AppConfig{},
			version:  "0.0.1",
			expected: state.BlockState{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.cfg, tt.version))
		})
	}
}

func TestGate_Fetch(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	st := state.New("1.0.0")
	cfg := &store.AppConfig{BaseURL: "https://example.com", MinAppVersion: "1.1.0"}
	source := &configSource{cfg: cfg}
	g := New(source, st, zap.New(core).Sugar())
	ctx := context.Background()

	require.True(t, g.Fetch(ctx))
	assert.Same(t, cfg, st.Config())
	assert.Equal(t, state.ReasonUpdateRequired, st.BlockState().Reason)
	assert.True(t, st.BlockState().Blocked)
	assert.Equal(t, "https://example.com", st.WebsiteURL())

	source.set(nil, errors.New("connection refused"))
	assert.False(t, g.Fetch(ctx))
	assert.Same(t, cfg, st.Config())
	assert.Equal(t, state.ReasonUpdateRequired, st.BlockState().Reason)

	entries := logs.FilterMessage("failed to fetch app config").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)

	source.set(nil, store.ErrConfigNotFound)
	assert.False(t, g.Fetch(ctx))
	assert.Same(t, cfg, st.Config())

	next := &store.AppConfig{MinAppVersion: "1.0.0"}
	source.set(next, nil)
	assert.True(t, g.Fetch(ctx))
	assert.Same(t, next, st.Config())
	assert.Equal(t, state.BlockState{}, st.BlockState())
	assert.Equal(t, store.DefaultWebsiteURL, st.WebsiteURL())
}

func TestGate_FetchFailureBeforeFirstConfig(t *testing.T) {
	st := state.New("")
	g := New(&configSource{err: errors.New("offline")}, st, zap.NewNop().Sugar())

	assert.False(t, g.Fetch(context.Background()))
	assert.Nil(t, st.Config())
	assert.False(t, st.BlockState().Blocked)
}

func TestGate_ConcurrentFetchesShareOneRequest(t *testing.T) {
	source := &configSource{
		cfg:  &store.AppConfig{LatestAppVersion: "2.0.0"},
		wait: make(chan struct{}),
	}
	st := state.New("1.0.0")
	g := New(source, st, zap.NewNop().Sugar())

	const callers = 5
	results := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		go func() {
			results <- g.Fetch(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return source.Calls() == 1 }, time.Second, time.Millisecond)
	// give the remaining callers a chance to join the in-flight fetch
	time.Sleep(20 * time.Millisecond)
	close(source.wait)

	for i := 0; i < callers; i++ {
		assert.True(t, <-results)
	}

	assert.LessOrEqual(t, source.Calls(), callers)
	assert.Equal(t, state.ReasonUpdateAvailable, st.BlockState().Reason)
}

func TestGate_Run(t *testing.T) {
	source := &configSource{cfg: &store.AppConfig{}}
	g := New(source, state.New(""), zap.NewNop().Sugar(), WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- g.Run(ctx)
	}()

	require.Eventually(t, func() bool { return source.Calls() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	calls := source.Calls()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, source.Calls())
}

func TestGate_RunFetchesImmediately(t *testing.T) {
	source := &configSource{cfg: &store.AppConfig{ForceStop: true}}
	st := state.New("")
	g := New(source, st, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.Run(ctx)
	}()

	require.Eventually(t, func() bool { return st.BlockState().Blocked }, time.Second, time.Millisecond)
	assert.Equal(t, 1, source.Calls())

	cancel()
	<-done
}

func TestWithInterval(t *testing.T) {
	g := New(nil, state.New(""), zap.NewNop().Sugar(), WithInterval(0))
	assert.Equal(t, DefaultInterval, g.interval)

	g = New(nil, state.New(""), zap.NewNop().Sugar(), WithInterval(time.Minute))
	assert.Equal(t, time.Minute, g.interval)
}
