package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

type groupsEnvelope struct {
	Clusters []Group `json:"clusters"`
}

// ParseGroups extracts the clusters object from a model reply. The reply may
// wrap the JSON in prose or a markdown fence.
func ParseGroups(text string) ([]Group, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return nil, fmt.Errorf("%w: no json object in reply", ErrUpstreamUnavailable)
	}

	var envelope groupsEnvelope
	if err := json.Unmarshal([]byte(text[start:end+1]), &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode reply: %v", ErrUpstreamUnavailable, err)
	}
	if envelope.Clusters == nil {
		return nil, fmt.Errorf("%w: reply has no clusters field", ErrUpstreamUnavailable)
	}
	return envelope.Clusters, nil
}
