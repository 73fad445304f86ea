package classification

import (
	dErrors "leicca/pkg/domain-errors"
)

// NewPanel assembles and validates a panel from its nodes. A malformed graph
// is rejected here, at load time, never during traversal.
//
// Invariants enforced:
//   - panel id and start node id are set, and the start node exists
//   - the start node id references a node of kind start
//   - every non-end target field references an existing node id
//   - every select node carries at least one option
//   - every end node carries a non-empty classification outcome
//   - every node is reachable from the start node
func NewPanel(panelID string, jurisdictionCodes []string, startNodeID string, nodes []Node) (*Panel, error) {
	if panelID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "panel id is required")
	}
	if startNodeID == "" {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "panel %s: start node id is required", panelID)
	}

	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		if n.ID() == "" {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "panel %s: node with empty id", panelID)
		}
		if _, dup := byID[n.ID()]; dup {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "panel %s: duplicate node id %q", panelID, n.ID())
		}
		byID[n.ID()] = n
	}

	start, ok := byID[startNodeID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "panel %s: start node %q does not exist", panelID, startNodeID)
	}
	if start.Kind() != KindStart {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "panel %s: start node %q has kind %s", panelID, startNodeID, start.Kind())
	}

	p := &Panel{
		PanelID:           panelID,
		JurisdictionCodes: jurisdictionCodes,
		StartNodeID:       startNodeID,
		nodes:             byID,
	}

	for _, n := range byID {
		if err := validateNode(p, n); err != nil {
			return nil, err
		}
	}

	if err := validateReachability(p); err != nil {
		return nil, err
	}

	return p, nil
}

func validateNode(p *Panel, n Node) error {
	check := func(field, target string) error {
		if target == "" {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"panel %s: node %q: %s is required", p.PanelID, n.ID(), field)
		}
		if _, ok := p.nodes[target]; !ok {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"panel %s: node %q: %s references unknown node %q", p.PanelID, n.ID(), field, target)
		}
		return nil
	}

	switch node := n.(type) {
	case StartNode:
		return check("continueTarget", node.ContinueTarget)
	case ScreenshotNode:
		return check("continueTarget", node.ContinueTarget)
	case QuestionNode:
		if err := check("yesTarget", node.YesTarget); err != nil {
			return err
		}
		return check("noTarget", node.NoTarget)
	case SelectNode:
		if len(node.Options) == 0 {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"panel %s: select node %q has no options", p.PanelID, n.ID())
		}
		seen := make(map[string]bool, len(node.Options))
		for _, opt := range node.Options {
			if opt.OptionID == "" {
				return dErrors.Newf(dErrors.CodeInvariantViolation,
					"panel %s: select node %q has an option with empty id", p.PanelID, n.ID())
			}
			if seen[opt.OptionID] {
				return dErrors.Newf(dErrors.CodeInvariantViolation,
					"panel %s: select node %q has duplicate option %q", p.PanelID, n.ID(), opt.OptionID)
			}
			seen[opt.OptionID] = true
			if err := check("option "+opt.OptionID, opt.NextNodeID); err != nil {
				return err
			}
		}
		return nil
	case EndNode:
		if node.Outcome.Classification == "" {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"panel %s: end node %q has no outcome", p.PanelID, n.ID())
		}
		return nil
	default:
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"panel %s: node %q has unknown kind", p.PanelID, n.ID())
	}
}

// validateReachability walks the graph from the start node and rejects panels
// with orphaned nodes. An unreachable subgraph is almost always an authoring
// mistake that would otherwise surface only in production traversals.
func validateReachability(p *Panel) error {
	visited := make(map[string]bool, len(p.nodes))
	stack := []string{p.StartNodeID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		switch node := p.nodes[id].(type) {
		case StartNode:
			stack = append(stack, node.ContinueTarget)
		case ScreenshotNode:
			stack = append(stack, node.ContinueTarget)
		case QuestionNode:
			stack = append(stack, node.YesTarget, node.NoTarget)
		case SelectNode:
			for _, opt := range node.Options {
				stack = append(stack, opt.NextNodeID)
			}
		case EndNode:
		}
	}

	for id := range p.nodes {
		if !visited[id] {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"panel %s: node %q is unreachable from start", p.PanelID, id)
		}
	}
	return nil
}
