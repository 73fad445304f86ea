package handler

import "leicca/internal/classification"

// NodeResponse renders the node currently awaiting input.
type NodeResponse struct {
	ID      string           `json:"id"`
	Type    string           `json:"type"`
	Text    string           `json:"text"`
	Options []OptionResponse `json:"options,omitempty"`
}

// OptionResponse renders one choice of a select node.
type OptionResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SessionResponse is returned while a session is in progress.
type SessionResponse struct {
	SessionID string        `json:"sessionId"`
	Done      bool          `json:"done"`
	Node      *NodeResponse `json:"node,omitempty"`
}

// StepResponse is returned from a step call. Result is set only when the
// step completed the session.
type StepResponse struct {
	Done   bool                   `json:"done"`
	Node   *NodeResponse          `json:"node,omitempty"`
	Result *classification.Result `json:"result,omitempty"`
}

// PanelSummary describes a registered panel.
type PanelSummary struct {
	Panel         string   `json:"panel"`
	Jurisdictions []string `json:"jurisdictions"`
	Nodes         int      `json:"nodes"`
}

func renderNode(n classification.Node) *NodeResponse {
	resp := &NodeResponse{
		ID:   n.ID(),
		Type: string(n.Kind()),
		Text: n.Text(),
	}
	if sel, ok := n.(classification.SelectNode); ok {
		for _, opt := range sel.Options {
			resp.Options = append(resp.Options, OptionResponse{ID: opt.OptionID, Text: opt.Text})
		}
	}
	return resp
}
