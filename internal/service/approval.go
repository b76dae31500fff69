package service

import "memorybook/internal/models"

// ApprovalPlan is the outcome of reconciling a requested photo list against
// a cluster's original membership.
type ApprovalPlan struct {
	Kept      []string
	Discarded []string
}

// PlanApproval decides which photos survive approval. Kept follows the
// requested order restricted to original, without duplicates. Discarded is
// everything else in original, in original order. It performs no I/O.
func PlanApproval(draft models.Draft, original, requested []string) (ApprovalPlan, error) {
	if draft.Status != models.DraftStatusDraft {
		return ApprovalPlan{}, conflictError("draft %s is %s", draft.ID, draft.Status)
	}

	members := make(map[string]bool, len(original))
	for _, id := range original {
		members[id] = true
	}

	keep := make(map[string]bool, len(requested))
	kept := make([]string, 0, len(requested))
	for _, id := range requested {
		if !members[id] || keep[id] {
			continue
		}
		keep[id] = true
		kept = append(kept, id)
	}
	if len(kept) == 0 {
		return ApprovalPlan{}, validationError("at least one photo of the cluster must be kept")
	}

	discarded := make([]string, 0, len(original)-len(kept))
	for _, id := range original {
		if !keep[id] {
			discarded = append(discarded, id)
		}
	}
	return ApprovalPlan{Kept: kept, Discarded: discarded}, nil
}
