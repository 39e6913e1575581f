// Package view tracks the dashboard's lifecycle: which phase it is in, the
// Query behind the current request and the result or failure it produced.
package view

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/stockdash/internal/analysis"
	"github.com/seenimoa/stockdash/pkg/models"
)

// Phase is one of the four view phases.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// Failure is what the Failed phase displays.
type Failure struct {
	Kind    analysis.Kind `json:"kind"`
	Message string        `json:"message"`
}

// State is a snapshot of the machine. Result is set only in PhaseLoaded,
// Failure only in PhaseFailed. Query is the query that began the current
// request and is what the result is displayed against.
type State struct {
	Phase     Phase                  `json:"phase"`
	Query     *models.Query          `json:"query,omitempty"`
	Result    *models.AnalysisResult `json:"result,omitempty"`
	Failure   *Failure               `json:"failure,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Seq       uint64                 `json:"seq"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Ticket identifies one request issued by Begin.
type Ticket struct {
	Seq       uint64
	RequestID string
	Query     models.Query
}

// Observer is called after every applied transition with the new state.
type Observer func(State)

// Machine is the view state machine. The most recent ticket wins: any
// resolution for an older ticket is discarded.
type Machine struct {
	// emit serialises transitions with their notifications so observers
	// see states in order. Observers must not call Begin, Succeed or Fail.
	emit      sync.Mutex
	mu        sync.Mutex
	state     State
	observers []Observer
	now       func() time.Time
}

// NewMachine returns a machine in PhaseIdle.
func NewMachine() *Machine {
	m := &Machine{now: time.Now}
	m.state = State{Phase: PhaseIdle, UpdatedAt: m.now()}
	return m
}

// Current returns a copy of the current state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn for transition notifications.
func (m *Machine) Subscribe(fn Observer) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// Begin moves to PhaseLoading from any phase, clearing the previous result
// and failure, and issues a new ticket.
func (m *Machine) Begin(q models.Query) Ticket {
	m.emit.Lock()
	defer m.emit.Unlock()

	m.mu.Lock()
	t := Ticket{Seq: m.state.Seq + 1, RequestID: uuid.NewString(), Query: q}
	m.state = State{
		Phase:     PhaseLoading,
		Query:     &t.Query,
		RequestID: t.RequestID,
		Seq:       t.Seq,
		UpdatedAt: m.now(),
	}
	s, obs := m.state, m.snapshotObservers()
	m.mu.Unlock()

	notify(obs, s)
	return t
}

// Succeed moves to PhaseLoaded with r if t is still current. It reports
// whether the transition was applied.
func (m *Machine) Succeed(t Ticket, r *models.AnalysisResult) bool {
	return m.resolve(t, func(s *State) {
		s.Phase = PhaseLoaded
		s.Result = r
	})
}

// Fail moves to PhaseFailed with err if t is still current. It reports
// whether the transition was applied.
func (m *Machine) Fail(t Ticket, err error) bool {
	f := &Failure{Kind: analysis.KindOf(err), Message: analysis.MessageOf(err)}
	return m.resolve(t, func(s *State) {
		s.Phase = PhaseFailed
		s.Failure = f
	})
}

func (m *Machine) resolve(t Ticket, apply func(*State)) bool {
	m.emit.Lock()
	defer m.emit.Unlock()

	m.mu.Lock()
	if t.Seq != m.state.Seq || m.state.Phase != PhaseLoading {
		m.mu.Unlock()
		return false
	}
	apply(&m.state)
	m.state.UpdatedAt = m.now()
	s, obs := m.state, m.snapshotObservers()
	m.mu.Unlock()

	notify(obs, s)
	return true
}

// snapshotObservers must be called with mu held.
func (m *Machine) snapshotObservers() []Observer {
	return append([]Observer(nil), m.observers...)
}

func notify(obs []Observer, s State) {
	for _, fn := range obs {
		fn(s)
	}
}
