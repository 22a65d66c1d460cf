package copilot

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// SourceType classifies where an answer was retrieved from.
type SourceType string

const (
	SourceLog       SourceType = "log"
	SourceDocument  SourceType = "document"
	SourceAnalytics SourceType = "analytics"
	SourceSystem    SourceType = "system"
)

// SparklinePoint is one value of the small chart attached to an answer.
type SparklinePoint struct {
	Value float64 `yaml:"value" json:"value"`
	Label string  `yaml:"label" json:"label,omitempty"`
}

// Template is one knowledge base entry.
type Template struct {
	Keywords    []string         `yaml:"keywords"`
	Answer      string           `yaml:"answer"`
	Source      string           `yaml:"source"`
	SourceType  SourceType       `yaml:"source_type"`
	Confidence  int              `yaml:"confidence"`
	ActionTaken string           `yaml:"action_taken"`
	ChartData   []SparklinePoint `yaml:"chart_data"`
}

// ThinkingStep is one stage of the retrieval animation.
type ThinkingStep struct {
	Text       string `yaml:"text" json:"text"`
	Icon       string `yaml:"icon" json:"icon"`
	DurationMs int    `yaml:"duration_ms" json:"duration_ms"`
}

// QuickPrompt is a canned question offered to the operator.
type QuickPrompt struct {
	Label string `yaml:"label" json:"label"`
	Text  string `yaml:"text" json:"text"`
}

// ChatRule maps keywords to a one-line dashboard answer.
type ChatRule struct {
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`
}

// KnowledgeBase is the full retrieval corpus.
type KnowledgeBase struct {
	Templates     []Template     `yaml:"templates"`
	Fallback      Template       `yaml:"fallback"`
	ThinkingSteps []ThinkingStep `yaml:"thinking_steps"`
	QuickPrompts  []QuickPrompt  `yaml:"quick_prompts"`
	Chat          struct {
		Rules   []ChatRule `yaml:"rules"`
		Default string     `yaml:"default"`
	} `yaml:"chat"`
}

// ParseKnowledgeBase decodes a YAML knowledge base.
func ParseKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	if len(kb.Templates) == 0 {
		return nil, fmt.Errorf("knowledge base has no templates")
	}
	for i, t := range kb.Templates {
		if len(t.Keywords) == 0 {
			return nil, fmt.Errorf("template %d has no keywords", i)
		}
		if t.Answer == "" {
			return nil, fmt.Errorf("template %d has no answer", i)
		}
	}
	return &kb, nil
}

// DefaultKnowledgeBase returns the embedded knowledge base.
func DefaultKnowledgeBase() *KnowledgeBase {
	kb, err := ParseKnowledgeBase(defaultKnowledge)
	if err != nil {
		panic(err)
	}
	return kb
}
