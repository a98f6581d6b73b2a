package bot

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type step int

const (
	stepNone step = iota

	// deposit intake
	stepCustomAmount
	stepLogin
	stepConfirm
	stepProof

	// admin text-input steps
	stepAdminCodeValue
	stepAdminCodeAmount
	stepAdminCodeDelete
	stepAdminCSVImport
	stepAdminAddAdmin
	stepAdminRemoveAdmin
	stepAdminAmounts
	stepAdminRejectReason
	stepAdminInfoRequest
	stepAdminPaymentToken
)

// session is one user's in-flight flow state. Sessions are created on first
// interaction and cleared on completion, cancellation or timeout; the store
// sweeps idle ones so the map never grows unbounded.
type session struct {
	step    step
	history []step

	amount      decimal.Decimal
	login       string
	targetAppID int64  // application the admin is rejecting / requesting info on
	codeValue   string // admin add-code flow

	lastTap time.Time // debounce for rapid duplicate clicks
	touched time.Time
	timeout *time.Timer // proof-upload deadline, nil when not armed
}

func (s *session) push(next step) {
	s.history = append(s.history, s.step)
	s.step = next
}

func (s *session) back() step {
	if len(s.history) == 0 {
		s.step = stepNone
		return stepNone
	}
	s.step = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	return s.step
}

type sessionStore struct {
	mu  sync.Mutex
	m   map[int64]*session
	ttl time.Duration
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionStore{m: make(map[int64]*session), ttl: ttl}
}

// update runs fn on the user's session under the store lock, creating the
// session on first interaction. All field mutation goes through here so that
// handlers never race the timeout callback or the janitor.
func (st *sessionStore) update(userID int64, fn func(*session)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.m[userID]
	if !ok {
		s = &session{}
		st.m[userID] = s
	}
	s.touched = time.Now()
	fn(s)
}

// snapshot returns a copy of the session's flow state. The copy is safe to
// read after the lock is released; history and the timer are not carried over.
func (st *sessionStore) snapshot(userID int64) (session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.m[userID]
	if !ok {
		return session{}, false
	}
	s.touched = time.Now()
	cp := *s
	cp.history = nil
	cp.timeout = nil
	return cp, true
}

// clear drops the session and disarms its timeout.
func (st *sessionStore) clear(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.m[userID]; ok {
		if s.timeout != nil {
			s.timeout.Stop()
		}
		delete(st.m, userID)
	}
}

// reset keeps the session alive but returns it to the idle state.
func (st *sessionStore) reset(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.m[userID]; ok {
		if s.timeout != nil {
			s.timeout.Stop()
			s.timeout = nil
		}
		s.step = stepNone
		s.history = nil
		s.amount = decimal.Zero
		s.login = ""
		s.targetAppID = 0
		s.codeValue = ""
	}
}

// debounce reports whether the tap arrived inside the duplicate-click window.
// The first tap in a window stamps it; followers are rejected.
func (st *sessionStore) debounce(userID int64, window time.Duration) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.m[userID]
	if !ok {
		s = &session{}
		st.m[userID] = s
	}
	now := time.Now()
	if now.Sub(s.lastTap) < window {
		return true
	}
	s.lastTap = now
	s.touched = now
	return false
}

// armTimeout schedules fn unless the step completes first. Re-arming replaces
// the previous timer.
func (st *sessionStore) armTimeout(userID int64, d time.Duration, fn func()) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.m[userID]
	if !ok {
		return
	}
	if s.timeout != nil {
		s.timeout.Stop()
	}
	s.timeout = time.AfterFunc(d, fn)
}

func (st *sessionStore) cancelTimeout(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.m[userID]; ok && s.timeout != nil {
		s.timeout.Stop()
		s.timeout = nil
	}
}

// sweep removes sessions idle longer than the ttl.
func (st *sessionStore) sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.m {
		if now.Sub(s.touched) > st.ttl {
			if s.timeout != nil {
				s.timeout.Stop()
			}
			delete(st.m, id)
			removed++
		}
	}
	return removed
}

func (st *sessionStore) startJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for now := range ticker.C {
			st.sweep(now)
		}
	}()
}
