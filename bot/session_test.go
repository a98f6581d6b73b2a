package bot

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionPushBack(t *testing.T) {
	s := &session{}
	s.push(stepCustomAmount)
	s.push(stepLogin)
	s.push(stepConfirm)
	assert.Equal(t, stepConfirm, s.step)

	assert.Equal(t, stepLogin, s.back())
	assert.Equal(t, stepCustomAmount, s.back())
	assert.Equal(t, stepNone, s.back())
	// Backing past the start stays idle.
	assert.Equal(t, stepNone, s.back())
}

func TestSessionStoreLifecycle(t *testing.T) {
	st := newSessionStore(time.Hour)

	_, ok := st.snapshot(7)
	assert.False(t, ok)

	st.update(7, func(s *session) {
		s.push(stepLogin)
		s.amount = decimal.NewFromInt(25)
		s.login = "account"
	})

	got, ok := st.snapshot(7)
	require.True(t, ok)
	assert.Equal(t, stepLogin, got.step)
	assert.Equal(t, "account", got.login)

	// reset keeps the session but drops all flow state.
	st.reset(7)
	got, ok = st.snapshot(7)
	require.True(t, ok)
	assert.Equal(t, stepNone, got.step)
	assert.Empty(t, got.login)
	assert.True(t, got.amount.IsZero())

	st.clear(7)
	_, ok = st.snapshot(7)
	assert.False(t, ok)
}

func TestSessionStoreDebounce(t *testing.T) {
	st := newSessionStore(time.Hour)

	assert.False(t, st.debounce(1, 50*time.Millisecond), "first tap passes")
	assert.True(t, st.debounce(1, 50*time.Millisecond), "duplicate inside the window is dropped")

	time.Sleep(60 * time.Millisecond)
	assert.False(t, st.debounce(1, 50*time.Millisecond), "tap after the window passes")

	// Independent users do not share the window.
	assert.False(t, st.debounce(2, 50*time.Millisecond))
}

func TestSessionStoreTimeout(t *testing.T) {
	st := newSessionStore(time.Hour)
	st.update(5, func(s *session) {})

	var fired atomic.Int32
	st.armTimeout(5, 30*time.Millisecond, func() { fired.Add(1) })
	time.Sleep(80 * time.Millisecond)
	assert.EqualValues(t, 1, fired.Load())

	// Cancelling disarms the pending timer.
	st.armTimeout(5, 30*time.Millisecond, func() { fired.Add(1) })
	st.cancelTimeout(5)
	time.Sleep(80 * time.Millisecond)
	assert.EqualValues(t, 1, fired.Load())

	// Re-arming replaces the previous timer instead of stacking.
	st.armTimeout(5, 200*time.Millisecond, func() { fired.Add(1) })
	st.armTimeout(5, 30*time.Millisecond, func() { fired.Add(1) })
	time.Sleep(300 * time.Millisecond)
	assert.EqualValues(t, 2, fired.Load())
}

// A fired deadline resets the session from a timer goroutine while the user
// is still typing; both sides must go through the store lock. Run with -race.
func TestSessionStoreTimeoutRace(t *testing.T) {
	st := newSessionStore(time.Hour)
	st.update(1, func(s *session) { s.push(stepConfirm) })

	done := make(chan struct{})
	st.armTimeout(1, time.Millisecond, func() {
		st.reset(1)
		close(done)
	})

	for i := 0; ; i++ {
		select {
		case <-done:
			got, ok := st.snapshot(1)
			require.True(t, ok, "reset keeps the session alive")
			_ = got
			return
		default:
			st.update(1, func(s *session) {
				s.login = "account"
				s.amount = decimal.NewFromInt(int64(i))
				s.push(stepProof)
			})
			st.snapshot(1)
		}
	}
}

func TestSessionStoreSweep(t *testing.T) {
	st := newSessionStore(10 * time.Millisecond)
	st.update(1, func(s *session) {})
	st.update(2, func(s *session) {})

	removed := st.sweep(time.Now())
	assert.Equal(t, 0, removed, "fresh sessions survive the sweep")

	removed = st.sweep(time.Now().Add(time.Minute))
	assert.Equal(t, 2, removed)
	_, ok := st.snapshot(1)
	assert.False(t, ok)
}

func TestSessionClearStopsTimeout(t *testing.T) {
	st := newSessionStore(time.Hour)
	st.update(9, func(s *session) {})

	var fired atomic.Int32
	st.armTimeout(9, 30*time.Millisecond, func() { fired.Add(1) })
	st.clear(9)
	time.Sleep(80 * time.Millisecond)
	assert.EqualValues(t, 0, fired.Load())
}
