package classification

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	dErrors "leicca/pkg/domain-errors"
)

// panelSpec is the YAML document shape for a panel definition. All node
// fields are optional at the YAML level; kind-specific requirements are
// enforced when the spec is converted into typed nodes.
type panelSpec struct {
	Panel         string     `yaml:"panel"`
	Jurisdictions []string   `yaml:"jurisdictions"`
	StartNode     string     `yaml:"startNode"`
	Nodes         []nodeSpec `yaml:"nodes"`
}

type nodeSpec struct {
	ID             string       `yaml:"id"`
	Type           string       `yaml:"type"`
	Text           string       `yaml:"text"`
	ContinueTarget string       `yaml:"continueTarget"`
	YesTarget      string       `yaml:"yesTarget"`
	NoTarget       string       `yaml:"noTarget"`
	Options        []optionSpec `yaml:"options"`
	Outcome        *outcomeSpec `yaml:"outcome"`
}

type optionSpec struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
	Next string `yaml:"next"`
}

type outcomeSpec struct {
	Classification string `yaml:"classification"`
	Category       string `yaml:"category"`
	Description    string `yaml:"description"`
}

// Parse decodes and validates a single YAML panel definition.
func Parse(data []byte) (*Panel, error) {
	var spec panelSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "panel yaml decode failed")
	}

	nodes := make([]Node, 0, len(spec.Nodes))
	for _, ns := range spec.Nodes {
		node, err := ns.toNode(spec.Panel)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return NewPanel(spec.Panel, spec.Jurisdictions, spec.StartNode, nodes)
}

func (ns nodeSpec) toNode(panelID string) (Node, error) {
	switch NodeKind(ns.Type) {
	case KindStart:
		return StartNode{NodeID: ns.ID, NodeText: ns.Text, ContinueTarget: ns.ContinueTarget}, nil
	case KindScreenshot:
		return ScreenshotNode{NodeID: ns.ID, NodeText: ns.Text, ContinueTarget: ns.ContinueTarget}, nil
	case KindQuestion:
		return QuestionNode{NodeID: ns.ID, NodeText: ns.Text, YesTarget: ns.YesTarget, NoTarget: ns.NoTarget}, nil
	case KindSelect:
		opts := make([]SelectOption, 0, len(ns.Options))
		for _, o := range ns.Options {
			opts = append(opts, SelectOption{OptionID: o.ID, Text: o.Text, NextNodeID: o.Next})
		}
		return SelectNode{NodeID: ns.ID, NodeText: ns.Text, Options: opts}, nil
	case KindEnd:
		if ns.Outcome == nil {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation,
				"panel %s: end node %q has no outcome", panelID, ns.ID)
		}
		return EndNode{
			NodeID:   ns.ID,
			NodeText: ns.Text,
			Outcome: Outcome{
				Classification: ns.Outcome.Classification,
				Category:       ns.Outcome.Category,
				Description:    ns.Outcome.Description,
			},
		}, nil
	default:
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation,
			"panel %s: node %q has unknown type %q", panelID, ns.ID, ns.Type)
	}
}

// LoadDir parses every .yaml/.yml file in dir into a validated panel.
func LoadDir(dir string) ([]*Panel, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "read panels directory")
	}

	var panels []*Panel
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "read panel file "+entry.Name())
		}
		panel, err := Parse(data)
		if err != nil {
			return nil, err
		}
		panels = append(panels, panel)
	}
	return panels, nil
}
