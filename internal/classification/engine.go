package classification

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"leicca/internal/classification/metrics"
	dErrors "leicca/pkg/domain-errors"
)

// Engine holds the validated panel registry and tracks live sessions. Panels
// are immutable after registration; all mutable traversal state lives in the
// per-session Session values, guarded here by a single mutex.
type Engine struct {
	mu       sync.RWMutex
	panels   map[string]*Panel
	sessions map[string]*Session

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an engine with the given validated panels.
func NewEngine(panels []*Panel, opts ...Option) *Engine {
	e := &Engine{
		panels:   make(map[string]*Panel, len(panels)),
		sessions: make(map[string]*Session),
	}
	for _, p := range panels {
		e.panels[p.PanelID] = p
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Panels returns all registered panels sorted by id.
func (e *Engine) Panels() []*Panel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Panel, 0, len(e.panels))
	for _, p := range e.panels {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PanelID < out[j].PanelID })
	return out
}

// Panel returns a registered panel by id.
func (e *Engine) Panel(panelID string) (*Panel, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.panels[panelID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "unknown panel %q", panelID)
	}
	return p, nil
}

// PanelForJurisdiction returns the first panel covering the jurisdiction code.
func (e *Engine) PanelForJurisdiction(code string) (*Panel, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, p := range e.panels {
		for _, j := range p.JurisdictionCodes {
			if j == code {
				return p, nil
			}
		}
	}
	return nil, dErrors.Newf(dErrors.CodeNotFound, "no panel for jurisdiction %q", code)
}

// StartSession begins a traversal of the named panel and returns the session
// id the caller uses to drive subsequent steps.
func (e *Engine) StartSession(panelID string) (string, *Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.panels[panelID]
	if !ok {
		return "", nil, dErrors.Newf(dErrors.CodeNotFound, "unknown panel %q", panelID)
	}

	sessionID := uuid.NewString()
	session := NewSession(p)
	e.sessions[sessionID] = session

	e.metrics.IncrementSessionsStarted(panelID)
	return sessionID, session, nil
}

// Session returns a live session by id.
func (e *Engine) Session(sessionID string) (*Session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[sessionID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "unknown session %q", sessionID)
	}
	return s, nil
}

// Step advances a live session with the caller's input. When the step lands
// on an end node the completed result is returned and the session is retired.
func (e *Engine) Step(sessionID, input string) (*Result, *Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[sessionID]
	if !ok {
		return nil, nil, dErrors.Newf(dErrors.CodeNotFound, "unknown session %q", sessionID)
	}

	if err := s.Step(input); err != nil {
		return nil, s, err
	}

	if !s.Done() {
		return nil, s, nil
	}

	result, err := s.Result()
	if err != nil {
		return nil, s, err
	}
	delete(e.sessions, sessionID)

	e.metrics.IncrementOutcome(result.Panel, result.Classification)
	if e.logger != nil {
		e.logger.Info("classification completed",
			"panel", result.Panel,
			"classification", result.Classification,
			"path_length", len(result.DecisionPath),
		)
	}
	return result, s, nil
}

// Replay runs a complete traversal of panelID with the given ordered answers.
// It exists for audit verification: the same answers against an unchanged
// panel must reproduce the identical decision path and result.
func (e *Engine) Replay(panelID string, answers []string) (*Result, error) {
	p, err := e.Panel(panelID)
	if err != nil {
		return nil, err
	}

	s := NewSession(p)
	i := 0
	// Load-time validation rejects dangling targets but a reachable loop is
	// legal, so the walk is bounded by answer consumption: a terminating
	// traversal visits at most every node once between two consumed answers.
	for steps := 0; !s.Done() && steps <= (len(answers)+1)*p.NodeCount(); steps++ {
		input := ""
		switch s.Current().Kind() {
		case KindQuestion, KindSelect:
			if i >= len(answers) {
				return nil, dErrors.Newf(dErrors.CodeInvalidInput,
					"panel %q: ran out of answers at node %q", panelID, s.Current().ID())
			}
			input = answers[i]
			i++
		}
		if err := s.Step(input); err != nil {
			return nil, err
		}
	}

	if !s.Done() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"panel %q: traversal did not terminate", panelID)
	}
	if i != len(answers) {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"panel %q: %d answers provided, %d consumed", panelID, len(answers), i)
	}
	return s.Result()
}
