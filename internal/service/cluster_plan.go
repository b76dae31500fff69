package service

import (
	"memorybook/internal/ai"
	"memorybook/internal/models"
)

const (
	FallbackTitle       = "Precious Moments"
	FallbackDescription = "A beautiful collection of memories capturing the joy and wonder of these special moments. Each photo tells a story of love and growth."
)

// PlannedCluster is one cluster to persist, before ids are assigned.
type PlannedCluster struct {
	PhotoIDs    []string
	Title       string
	Description string
	Theme       models.Theme
}

// PlanClusters turns raw classifier output into clusters that together
// contain every id of batch exactly once.
//
// sent lists the ids that were handed to the classifier; group indexes refer
// to positions in sent. Indexes out of range are dropped, an id claimed by an
// earlier group is dropped from later ones and groups left empty disappear.
// A classifier error or no usable group yields a single fallback cluster
// over the whole batch. Ids no group claimed go into one extra fallback
// cluster.
func PlanClusters(batch, sent []string, groups []ai.Group, classifyErr error) []PlannedCluster {
	if len(batch) == 0 {
		return nil
	}
	if classifyErr != nil {
		return []PlannedCluster{fallbackCluster(batch)}
	}

	claimed := make(map[string]bool, len(batch))
	planned := make([]PlannedCluster, 0, len(groups))
	for _, g := range groups {
		var members []string
		for _, idx := range g.PhotoIndexes {
			if idx < 0 || idx >= len(sent) {
				continue
			}
			id := sent[idx]
			if claimed[id] {
				continue
			}
			claimed[id] = true
			members = append(members, id)
		}
		if len(members) == 0 {
			continue
		}
		planned = append(planned, PlannedCluster{
			PhotoIDs:    members,
			Title:       g.Title,
			Description: g.Description,
			Theme:       models.NormalizeTheme(g.Theme),
		})
	}

	if len(planned) == 0 {
		return []PlannedCluster{fallbackCluster(batch)}
	}

	var leftover []string
	for _, id := range batch {
		if !claimed[id] {
			leftover = append(leftover, id)
		}
	}
	if len(leftover) > 0 {
		planned = append(planned, fallbackCluster(leftover))
	}
	return planned
}

func fallbackCluster(ids []string) PlannedCluster {
	return PlannedCluster{
		PhotoIDs:    append([]string(nil), ids...),
		Title:       FallbackTitle,
		Description: FallbackDescription,
		Theme:       models.DefaultTheme,
	}
}

// dedupe keeps the first occurrence of every non-empty id.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
