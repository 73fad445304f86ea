package handler

// StartSessionRequest begins a traversal of a panel.
type StartSessionRequest struct {
	Panel string `json:"panel"`
}

// StepRequest advances a session. Input is empty for start and screenshot
// nodes, "yes"/"no" for question nodes, and an option id for select nodes.
type StepRequest struct {
	Input string `json:"input"`
}
