package audience

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Tab identifies one of the three dashboard views.
type Tab string

const (
	TabTargeting   Tab = "targeting"
	TabInsights    Tab = "insights"
	TabPerformance Tab = "performance"
)

// Tabs lists the views in navigation order.
var Tabs = []Tab{TabTargeting, TabInsights, TabPerformance}

// ParseTab resolves a tab name, case insensitive.
func ParseTab(raw string) (Tab, error) {
	tab := Tab(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Tabs {
		if tab == known {
			return tab, nil
		}
	}
	return "", unknownTabError(Tab(raw))
}

// State is a point-in-time copy of a session's view state.
type State struct {
	ActiveTab           Tab      `json:"active_tab"`
	IsLoading           bool     `json:"is_loading"`
	Audiences           []Record `json:"audiences"`
	HasAppliedAudiences bool     `json:"has_applied_audiences"`
	// Error is the banner shown after a failed generation; cleared on the next success.
	Error string `json:"error,omitempty"`
	// Batch counts accepted submissions.
	Batch int `json:"batch"`
}

// InitialState is {targeting, not loading, no audiences, not applied}.
func InitialState() State {
	return State{ActiveTab: TabTargeting}
}

// HasAudiences reports whether a batch has been generated.
func (s State) HasAudiences() bool {
	return len(s.Audiences) > 0
}

// CanSelect reports whether tab is reachable from s.
func (s State) CanSelect(tab Tab) bool {
	switch tab {
	case TabTargeting:
		return true
	case TabInsights:
		return s.HasAudiences()
	case TabPerformance:
		return s.HasAppliedAudiences
	default:
		return false
	}
}

// CanApply reports whether the apply action is offered.
func (s State) CanApply() bool {
	return s.ActiveTab == TabInsights && s.HasAudiences()
}

func (s State) clone() State {
	s.Audiences = CloneRecords(s.Audiences)
	return s
}

// EventKind names a session transition.
type EventKind string

const (
	EventGenerationStarted   EventKind = "generation.started"
	EventGenerationCompleted EventKind = "generation.completed"
	EventGenerationFailed    EventKind = "generation.failed"
	EventTabSelected         EventKind = "tab.selected"
	EventAudiencesApplied    EventKind = "audiences.applied"
	EventSessionClosed       EventKind = "session.closed"
)

// Event is delivered to listeners after a transition committed.
type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"session_id"`
	State     State     `json:"state"`
	Err       error     `json:"-"`
}

// Listener observes session transitions. It is called without the session lock held.
type Listener func(Event)

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithListener registers a transition observer.
func WithListener(l Listener) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// WithClock overrides the time source used for activity tracking.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session owns the view state of one mounted dashboard. All mutation goes through
// its transition methods.
type Session struct {
	id  string
	gen Generator
	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      State
	pending    *Job
	closed     bool
	lastActive time.Time
	listeners  []Listener
}

// NewSession creates a session in the initial state. A nil generator falls back to
// MockGenerator.
func NewSession(id string, gen Generator, opts ...SessionOption) *Session {
	if gen == nil {
		gen = MockGenerator{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     id,
		gen:    gen,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		state:  InitialState(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.lastActive = s.now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// LastActive reports the time of the last accepted transition.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Closed reports whether Close ran.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Submit starts a generation job. It is rejected while another job is pending.
// ctx only bounds the submission; the job itself runs on the session context so it
// outlives the request that started it and stops when the session closes.
func (s *Session) Submit(ctx context.Context, input TargetingInput) (*Job, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, sessionClosedError(s.id)
	}
	if s.state.IsLoading {
		s.mu.Unlock()
		return nil, generationInProgressError()
	}
	s.state.IsLoading = true
	s.state.Batch++
	jobCtx, jobCancel := context.WithCancel(s.ctx)
	job := newJob(s.state.Batch, jobCancel)
	s.pending = job
	s.lastActive = s.now()
	snapshot := s.state.clone()
	s.wg.Add(1)
	s.mu.Unlock()

	s.emit(Event{Kind: EventGenerationStarted, SessionID: s.id, State: snapshot})

	go func() {
		defer s.wg.Done()
		records, err := s.gen.Generate(jobCtx, input)
		s.complete(job, records, err)
	}()
	return job, nil
}

func (s *Session) complete(job *Job, records []Record, err error) {
	if err == nil && len(records) == 0 {
		err = errors.New("generator returned no audiences")
	}

	s.mu.Lock()
	if s.closed || s.pending != job {
		s.mu.Unlock()
		job.resolve(nil, sessionClosedError(s.id))
		return
	}
	s.pending = nil
	s.state.IsLoading = false
	s.lastActive = s.now()

	var (
		kind   EventKind
		result []Record
	)
	if err != nil {
		err = GenerationFailedError(err)
		s.state.ActiveTab = TabTargeting
		s.state.Error = bannerMessage(err)
		kind = EventGenerationFailed
	} else {
		result = NormalizeBatch(records)
		s.state.Audiences = result
		s.state.ActiveTab = TabInsights
		s.state.Error = ""
		kind = EventGenerationCompleted
	}
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.emit(Event{Kind: kind, SessionID: s.id, State: snapshot, Err: err})
	job.resolve(CloneRecords(result), err)
}

// SelectTab switches the active tab when the target is unlocked. A rejected
// selection leaves the state untouched.
func (s *Session) SelectTab(tab Tab) (State, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return State{}, sessionClosedError(s.id)
	}
	switch tab {
	case TabTargeting, TabInsights, TabPerformance:
	default:
		snapshot := s.state.clone()
		s.mu.Unlock()
		return snapshot, unknownTabError(tab)
	}
	if !s.state.CanSelect(tab) {
		snapshot := s.state.clone()
		s.mu.Unlock()
		return snapshot, tabLockedError(tab)
	}
	s.state.ActiveTab = tab
	s.lastActive = s.now()
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.emit(Event{Kind: EventTabSelected, SessionID: s.id, State: snapshot})
	return snapshot, nil
}

// Apply confirms the generated audiences and opens the performance view. It is one
// way: nothing clears HasAppliedAudiences for the life of the session.
func (s *Session) Apply() (State, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return State{}, sessionClosedError(s.id)
	}
	if !s.state.CanApply() {
		snapshot := s.state.clone()
		s.mu.Unlock()
		return snapshot, applyUnavailableError(snapshot.ActiveTab)
	}
	s.state.HasAppliedAudiences = true
	s.state.ActiveTab = TabPerformance
	s.lastActive = s.now()
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.emit(Event{Kind: EventAudiencesApplied, SessionID: s.id, State: snapshot})
	return snapshot, nil
}

// Close tears the session down, cancels a pending job and waits for it to unwind.
// Late completions are discarded. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.state.IsLoading = false
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.cancel()
	if pending != nil {
		pending.resolve(nil, sessionClosedError(s.id))
	}
	s.wg.Wait()
	s.emit(Event{Kind: EventSessionClosed, SessionID: s.id, State: snapshot})
}

func (s *Session) emit(evt Event) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(evt)
	}
}

func bannerMessage(err error) string {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		if e.Source != nil {
			return "Audience generation failed: " + e.Source.Error()
		}
		return "Audience generation failed: " + strings.TrimPrefix(e.Message, "audience: generation failed: ")
	}
	return "Audience generation failed: " + err.Error()
}
