// Package filter evaluates CEL expressions against topics, powering the
// filter parameter of topic search. Expressions see the topic's fields
// by name, e.g. `is_active && "policy" in keywords`.
package filter

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"github.com/topicinsights/topicinsights/store"
)

// TopicFilter is a compiled filter expression.
type TopicFilter struct {
	expression string
	program    cel.Program
}

// New compiles a CEL expression into a topic filter.
// The expression must evaluate to a boolean.
func New(expression string) (*TopicFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("description", cel.StringType),
		cel.Variable("keywords", cel.ListType(cel.StringType)),
		cel.Variable("owner_id", cel.StringType),
		cel.Variable("is_active", cel.BoolType),
		cel.Variable("metadata", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter environment")
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "invalid filter expression %q", expression)
	}
	if ast.OutputType().String() != "bool" {
		return nil, errors.Errorf("filter expression %q must evaluate to a boolean, got %s", expression, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build filter program")
	}

	return &TopicFilter{
		expression: expression,
		program:    program,
	}, nil
}

// Matches reports whether the topic satisfies the filter.
func (f *TopicFilter) Matches(topic *store.Topic) (bool, error) {
	description := ""
	if topic.Description != nil {
		description = *topic.Description
	}
	keywords := topic.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	metadata := topic.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	out, _, err := f.program.Eval(map[string]any{
		"name":        topic.Name,
		"description": description,
		"keywords":    keywords,
		"owner_id":    topic.OwnerID.String(),
		"is_active":   topic.IsActive,
		"metadata":    metadata,
	})
	if err != nil {
		return false, errors.Wrapf(err, "failed to evaluate filter %q", f.expression)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("filter %q returned non-boolean value", f.expression)
	}
	return matched, nil
}

// Apply returns the topics that satisfy the filter, preserving order.
func (f *TopicFilter) Apply(topics []*store.Topic) ([]*store.Topic, error) {
	matched := make([]*store.Topic, 0, len(topics))
	for _, topic := range topics {
		ok, err := f.Matches(topic)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, topic)
		}
	}
	return matched, nil
}
