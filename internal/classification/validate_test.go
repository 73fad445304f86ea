package classification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leicca/internal/classification"
	dErrors "leicca/pkg/domain-errors"
)

func TestNewPanelRejectsDanglingTarget(t *testing.T) {
	nodes := []classification.Node{
		classification.StartNode{NodeID: "start", NodeText: "begin", ContinueTarget: "q1"},
		classification.QuestionNode{NodeID: "q1", NodeText: "regulated?", YesTarget: "nowhere", NoTarget: "end"},
		classification.EndNode{NodeID: "end", NodeText: "done", Outcome: classification.Outcome{Classification: "X"}},
	}

	_, err := classification.NewPanel("p", nil, "start", nodes)
	require.Error(t, err, "dangling yesTarget must be rejected at load time")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestNewPanelRejectsEndWithoutOutcome(t *testing.T) {
	nodes := []classification.Node{
		classification.StartNode{NodeID: "start", NodeText: "begin", ContinueTarget: "end"},
		classification.EndNode{NodeID: "end", NodeText: "done"},
	}

	_, err := classification.NewPanel("p", nil, "start", nodes)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestNewPanelRejectsSelectWithoutOptions(t *testing.T) {
	nodes := []classification.Node{
		classification.StartNode{NodeID: "start", NodeText: "begin", ContinueTarget: "sel"},
		classification.SelectNode{NodeID: "sel", NodeText: "pick"},
		classification.EndNode{NodeID: "end", NodeText: "done", Outcome: classification.Outcome{Classification: "X"}},
	}

	_, err := classification.NewPanel("p", nil, "start", nodes)
	require.Error(t, err)
}

func TestNewPanelRejectsMissingStart(t *testing.T) {
	nodes := []classification.Node{
		classification.EndNode{NodeID: "end", NodeText: "done", Outcome: classification.Outcome{Classification: "X"}},
	}

	_, err := classification.NewPanel("p", nil, "start", nodes)
	require.Error(t, err)
}

func TestNewPanelRejectsNonStartEntryNode(t *testing.T) {
	nodes := []classification.Node{
		classification.QuestionNode{NodeID: "q", NodeText: "?", YesTarget: "end", NoTarget: "end"},
		classification.EndNode{NodeID: "end", NodeText: "done", Outcome: classification.Outcome{Classification: "X"}},
	}

	_, err := classification.NewPanel("p", nil, "q", nodes)
	require.Error(t, err, "entry node must have kind start")
}

func TestNewPanelRejectsUnreachableNode(t *testing.T) {
	nodes := []classification.Node{
		classification.StartNode{NodeID: "start", NodeText: "begin", ContinueTarget: "end"},
		classification.EndNode{NodeID: "end", NodeText: "done", Outcome: classification.Outcome{Classification: "X"}},
		classification.EndNode{NodeID: "orphan", NodeText: "island", Outcome: classification.Outcome{Classification: "Y"}},
	}

	_, err := classification.NewPanel("p", nil, "start", nodes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestNewPanelRejectsDuplicateNodeIDs(t *testing.T) {
	nodes := []classification.Node{
		classification.StartNode{NodeID: "start", NodeText: "begin", ContinueTarget: "end"},
		classification.EndNode{NodeID: "end", NodeText: "done", Outcome: classification.Outcome{Classification: "X"}},
		classification.EndNode{NodeID: "end", NodeText: "again", Outcome: classification.Outcome{Classification: "Y"}},
	}

	_, err := classification.NewPanel("p", nil, "start", nodes)
	require.Error(t, err)
}
