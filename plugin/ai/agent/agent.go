// Package agent provides the LLM analysis capability surface: topic
// analysis, content summarization, entity extraction, and follow-up
// question generation. Each backing provider implements the full set.
package agent

import "context"

// TopicAnalysis is the result of analyzing a topic.
type TopicAnalysis struct {
	Analysis   string `json:"analysis"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used"`
}

// Entity is a named entity or key concept extracted from content.
type Entity struct {
	Entity    string  `json:"entity"`
	Category  string  `json:"category"`
	Relevance float64 `json:"relevance"` // 0-1
}

// Agent is the capability set of an LLM analysis provider.
type Agent interface {
	// AnalyzeTopic analyzes a topic and returns insights. The optional
	// context map is included in the prompt verbatim.
	AnalyzeTopic(ctx context.Context, topic string, extra map[string]any) (*TopicAnalysis, error)

	// SummarizeContent generates a summary of the provided content.
	// maxLength 0 means no length guidance.
	SummarizeContent(ctx context.Context, content string, maxLength int) (string, error)

	// ExtractEntities extracts named entities and key concepts.
	ExtractEntities(ctx context.Context, content string) ([]Entity, error)

	// GenerateQuestions generates follow-up questions based on the content.
	GenerateQuestions(ctx context.Context, content string, numQuestions int) ([]string, error)

	// Close releases any resources held by the agent.
	Close() error
}
