package app

import (
	"strings"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// Topics events are published on.
const (
	TopicCreateAssessment = "assessment.create"
	TopicUpdateAssessment = "assessment.update"
)

// Options is the raw, environment-shaped configuration before parsing.
// Trigger lists are comma-separated identifier strings.
type Options struct {
	WorkflowEnabled        bool
	DemandTriggerState     string
	WorkflowTriggerFields  string
	WorkflowTriggerObjects string
	MaxSearchLimit         int
	DefaultLimit           int
	DefaultOffset          int
}

// Config is the parsed orchestrator configuration. Trigger lists are
// split into sets exactly once here, never re-split per call.
type Config struct {
	WorkflowEnabled    bool
	DemandTriggerState string
	TriggerFields      map[string]struct{}
	TriggerObjects     map[string]struct{}
	MaxSearchLimit     int
	DefaultLimit       int
	DefaultOffset      int
}

// NewConfig parses Options into a Config, failing with a
// ConfigurationError on malformed trigger lists or non-positive limits.
func NewConfig(opts Options) (*Config, error) {
	fields, err := parseTriggerList("workflowTriggerFields", opts.WorkflowTriggerFields)
	if err != nil {
		return nil, err
	}
	objects, err := parseTriggerList("workflowTriggerObjects", opts.WorkflowTriggerObjects)
	if err != nil {
		return nil, err
	}

	if opts.MaxSearchLimit <= 0 {
		return nil, &domain.ConfigurationError{Key: "maxSearchLimit", Reason: "must be positive"}
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > opts.MaxSearchLimit {
		return nil, &domain.ConfigurationError{Key: "defaultLimit", Reason: "must be positive and at most maxSearchLimit"}
	}
	if opts.DefaultOffset < 0 {
		return nil, &domain.ConfigurationError{Key: "defaultOffset", Reason: "must not be negative"}
	}
	if opts.WorkflowEnabled && opts.DemandTriggerState == "" {
		return nil, &domain.ConfigurationError{Key: "demandTriggerStateName", Reason: "required when workflow is enabled"}
	}

	return &Config{
		WorkflowEnabled:    opts.WorkflowEnabled,
		DemandTriggerState: opts.DemandTriggerState,
		TriggerFields:      fields,
		TriggerObjects:     objects,
		MaxSearchLimit:     opts.MaxSearchLimit,
		DefaultLimit:       opts.DefaultLimit,
		DefaultOffset:      opts.DefaultOffset,
	}, nil
}

// parseTriggerList splits a comma-separated identifier list into a set.
// Identifiers are matched exactly (case-sensitive); an empty list is
// allowed, an empty entry inside a non-empty list is not.
func parseTriggerList(key, raw string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	if strings.TrimSpace(raw) == "" {
		return set, nil
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return nil, &domain.ConfigurationError{Key: key, Reason: "empty entry in trigger list"}
		}
		set[entry] = struct{}{}
	}
	return set, nil
}
