package classification

import (
	dErrors "leicca/pkg/domain-errors"
)

// Answers recognised by question nodes.
const (
	AnswerYes      = "yes"
	AnswerNo       = "no"
	answerContinue = "continue"
)

// PathStep is one visited node in a decision path, with the answer that moved
// the session past it.
type PathStep struct {
	NodeID   string `json:"nodeId"`
	NodeText string `json:"nodeText"`
	Answer   string `json:"answer"`
}

// Result is the final product of a completed session. DecisionPath records
// why the classification was reached; replaying the same answers against the
// same panel yields an identical Result.
type Result struct {
	Panel          string     `json:"panel"`
	Classification string     `json:"classification"`
	Category       string     `json:"category"`
	Description    string     `json:"description"`
	Success        bool       `json:"success"`
	DecisionPath   []PathStep `json:"decisionPath"`
}

// Session walks one panel. Sessions own their path state, so concurrent
// sessions over the same panel never observe each other's progress.
type Session struct {
	panel   *Panel
	current Node
	path    []PathStep
}

// NewSession starts a traversal at the panel's start node. Nodes requiring no
// input (start, screenshot) are not auto-advanced; callers drive every step so
// the path records each visited node.
func NewSession(p *Panel) *Session {
	start, _ := p.Node(p.StartNodeID)
	return &Session{panel: p, current: start}
}

// Current returns the node awaiting input.
func (s *Session) Current() Node { return s.current }

// Done reports whether the session has reached an end node.
func (s *Session) Done() bool {
	_, ok := s.current.(EndNode)
	return ok
}

// Path returns a copy of the decision path accumulated so far.
func (s *Session) Path() []PathStep {
	out := make([]PathStep, len(s.path))
	copy(out, s.path)
	return out
}

// Step advances the session by one transition. The input requirement depends
// on the current node kind:
//
//   - start, screenshot: no input; any provided input is ignored
//   - question: input must be "yes" or "no"
//   - select: input must match one of the node's option ids
//   - end: terminal, stepping is an input error
//
// Unmatched input is an input error, never a panel error: panels are
// validated at load time, so target resolution here cannot fail.
func (s *Session) Step(input string) error {
	var (
		nextID string
		answer string
	)

	switch node := s.current.(type) {
	case StartNode:
		nextID, answer = node.ContinueTarget, answerContinue
	case ScreenshotNode:
		nextID, answer = node.ContinueTarget, answerContinue
	case QuestionNode:
		switch input {
		case AnswerYes:
			nextID, answer = node.YesTarget, AnswerYes
		case AnswerNo:
			nextID, answer = node.NoTarget, AnswerNo
		default:
			return dErrors.Newf(dErrors.CodeInvalidInput,
				"node %q expects yes or no, got %q", node.NodeID, input)
		}
	case SelectNode:
		opt, ok := node.Option(input)
		if !ok {
			return dErrors.Newf(dErrors.CodeInvalidInput,
				"node %q has no option %q", node.NodeID, input)
		}
		nextID, answer = opt.NextNodeID, input
	case EndNode:
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"session already completed at node %q", node.NodeID)
	}

	s.path = append(s.path, PathStep{
		NodeID:   s.current.ID(),
		NodeText: s.current.Text(),
		Answer:   answer,
	})

	// Load-time validation guarantees the target exists.
	next, _ := s.panel.Node(nextID)
	s.current = next
	return nil
}

// Result returns the classification once the session has reached an end node.
func (s *Session) Result() (*Result, error) {
	end, ok := s.current.(EndNode)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"session not complete, currently at node %q", s.current.ID())
	}

	path := s.Path()
	path = append(path, PathStep{NodeID: end.NodeID, NodeText: end.NodeText, Answer: ""})

	return &Result{
		Panel:          s.panel.PanelID,
		Classification: end.Outcome.Classification,
		Category:       end.Outcome.Category,
		Description:    end.Outcome.Description,
		Success:        true,
		DecisionPath:   path,
	}, nil
}
