package process

import (
	"sync"
	"time"

	"github.com/satori/uuid"
)

// Result reports the outcome of a Slot.Start attempt.
type Result int

// Start outcomes. The API edge maps each to an HTTP status in one
// place (EarlyExit's status depends on its classified cause), so
// handlers never invent their own.
const (
	Started Result = iota
	AlreadyRunning
	FailedToSpawn
	EarlyExit
)

func (r Result) String() string {
	switch r {
	case Started:
		return "started"
	case AlreadyRunning:
		return "already_running"
	case FailedToSpawn:
		return "failed_to_spawn"
	case EarlyExit:
		return "early_exit"
	default:
		return "unknown"
	}
}

// Runnable is satisfied by both *Child and *Pipeline, letting Slot
// supervise either a single decoder or a piped pair uniformly.
type Runnable interface {
	Start() error
	Stop(grace time.Duration)
	Done() <-chan struct{}
}

// Slot enforces the single-running-pipeline-per-mode invariant: at
// most one capture runs under a given mode name at any time, and
// start/stop are serialized against each other.
type Slot struct {
	Mode string

	mu         sync.Mutex
	current    Runnable
	running    bool
	startAt    time.Time
	launchCmd  string
	launchedID string
	onExit     func()
}

// SetOnExit registers a callback fired when the slot's occupant dies
// on its own (a crash or an external kill), as opposed to an explicit
// Stop. Mode controllers use it to post the terminal status event so
// SSE clients learn the pipeline went away.
func (s *Slot) SetOnExit(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExit = fn
}

// NewSlot creates an empty, stopped slot for the named mode.
func NewSlot(mode string) *Slot {
	return &Slot{Mode: mode}
}

// Running reports whether a pipeline currently occupies the slot.
func (s *Slot) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// StartedAt returns the time the current occupant was started, or the
// zero time if the slot is empty.
func (s *Slot) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startAt
}

// LaunchCmd returns the diagnostic description of the currently
// running (or most recently run) launch command.
func (s *Slot) LaunchCmd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launchCmd
}

// CorrelationID returns the UUID stamped on the current (or most
// recent) launch, so supervisor diagnostics for one pipeline run can be
// correlated across its parser, stderr drain, and exit report.
func (s *Slot) CorrelationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launchedID
}

// pidReporter is implemented by *Child and *Pipeline, letting Slot
// surface a PID for resource accounting without knowing which kind of
// Runnable currently occupies it.
type pidReporter interface {
	PID() int
}

// PID returns the running occupant's process id for resource
// accounting, or 0 if the slot is empty.
func (s *Slot) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.current == nil {
		return 0
	}
	if p, ok := s.current.(pidReporter); ok {
		return p.PID()
	}
	return 0
}

// Start attempts to occupy the slot with r, built by build. build runs
// only once the slot is confirmed free, under the slot's lock, so two
// concurrent Start calls can never both spawn. settle is the minimum
// duration the process must stay alive to count as a successful start
// rather than an EarlyExit (e.g. a missing device causing immediate
// exit). cmd is a human-readable description of the launch (argv,
// joined) retained for diagnostics only.
func (s *Slot) Start(build func() (Runnable, error), settle time.Duration, cmd string) Result {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return AlreadyRunning
	}

	r, err := build()
	if err != nil {
		s.mu.Unlock()
		return FailedToSpawn
	}

	if err := r.Start(); err != nil {
		s.mu.Unlock()
		return FailedToSpawn
	}

	s.current = r
	s.running = true
	s.startAt = time.Now()
	s.launchCmd = cmd
	s.launchedID = uuid.NewV4().String()
	s.mu.Unlock()

	select {
	case <-r.Done():
		s.mu.Lock()
		if s.current == r {
			s.running = false
			s.current = nil
		}
		s.mu.Unlock()
		return EarlyExit
	case <-time.After(settle):
	}

	go s.watch(r)

	return Started
}

// watch clears the slot once the occupant exits on its own, so a
// crashed decoder doesn't leave the mode permanently marked busy.
func (s *Slot) watch(r Runnable) {
	<-r.Done()
	s.mu.Lock()
	crashed := s.current == r
	if crashed {
		s.running = false
		s.current = nil
	}
	fn := s.onExit
	s.mu.Unlock()

	if crashed && fn != nil {
		fn()
	}
}

// Stop stops the current occupant, if any, and reports whether one was
// actually running.
func (s *Slot) Stop(grace time.Duration) bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	r := s.current
	s.mu.Unlock()

	r.Stop(grace)

	s.mu.Lock()
	if s.current == r {
		s.running = false
		s.current = nil
	}
	s.mu.Unlock()
	return true
}
