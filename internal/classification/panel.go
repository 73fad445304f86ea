// Package classification implements the jurisdiction rule-tree engine. A
// panel is a validated decision graph; a session walks it node by node,
// recording the decision path that justifies the final classification.
package classification

// NodeKind enumerates the node variants a panel may contain.
type NodeKind string

const (
	KindStart      NodeKind = "start"
	KindSelect     NodeKind = "select"
	KindQuestion   NodeKind = "question"
	KindScreenshot NodeKind = "screenshot"
	KindEnd        NodeKind = "end"
)

// Node is the closed set of panel node variants. Each variant carries only
// the fields its kind uses, so transition logic never has to tolerate a
// select node without options.
type Node interface {
	ID() string
	Text() string
	Kind() NodeKind
}

// StartNode is the single entry point of a panel.
type StartNode struct {
	NodeID         string
	NodeText       string
	ContinueTarget string
}

func (n StartNode) ID() string     { return n.NodeID }
func (n StartNode) Text() string   { return n.NodeText }
func (n StartNode) Kind() NodeKind { return KindStart }

// ScreenshotNode instructs the operator to capture evidence, then continues.
type ScreenshotNode struct {
	NodeID         string
	NodeText       string
	ContinueTarget string
}

func (n ScreenshotNode) ID() string     { return n.NodeID }
func (n ScreenshotNode) Text() string   { return n.NodeText }
func (n ScreenshotNode) Kind() NodeKind { return KindScreenshot }

// QuestionNode branches on a yes/no answer.
type QuestionNode struct {
	NodeID    string
	NodeText  string
	YesTarget string
	NoTarget  string
}

func (n QuestionNode) ID() string     { return n.NodeID }
func (n QuestionNode) Text() string   { return n.NodeText }
func (n QuestionNode) Kind() NodeKind { return KindQuestion }

// SelectOption is one choice offered by a SelectNode.
type SelectOption struct {
	OptionID   string
	Text       string
	NextNodeID string
}

// SelectNode branches on one of several named options.
type SelectNode struct {
	NodeID   string
	NodeText string
	Options  []SelectOption
}

func (n SelectNode) ID() string     { return n.NodeID }
func (n SelectNode) Text() string   { return n.NodeText }
func (n SelectNode) Kind() NodeKind { return KindSelect }

// Option returns the option matching id, if any.
func (n SelectNode) Option(id string) (SelectOption, bool) {
	for _, opt := range n.Options {
		if opt.OptionID == id {
			return opt, true
		}
	}
	return SelectOption{}, false
}

// Outcome is the regulatory classification carried by an end node.
type Outcome struct {
	Classification string
	Category       string
	Description    string
}

// EndNode terminates traversal and emits its outcome.
type EndNode struct {
	NodeID   string
	NodeText string
	Outcome  Outcome
}

func (n EndNode) ID() string     { return n.NodeID }
func (n EndNode) Text() string   { return n.NodeText }
func (n EndNode) Kind() NodeKind { return KindEnd }

// Panel is an immutable, validated decision tree for one or more
// jurisdictions. Construct through Load or NewPanel so the graph invariants
// hold before any traversal starts.
type Panel struct {
	PanelID           string
	JurisdictionCodes []string
	StartNodeID       string
	nodes             map[string]Node
}

// Node returns the node with the given id.
func (p *Panel) Node(id string) (Node, bool) {
	n, ok := p.nodes[id]
	return n, ok
}

// NodeCount returns the number of nodes in the panel.
func (p *Panel) NodeCount() int { return len(p.nodes) }
