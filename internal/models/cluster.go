package models

import "time"

// Cluster is the classifier's grouping of a batch. PhotoIDs is the original
// membership and never changes after creation.
type Cluster struct {
	ID          string
	OwnerID     string
	PhotoIDs    []string
	Title       string
	Description string
	Theme       Theme
	CreatedAt   time.Time
}

// ClusterDraft is a new cluster paired with the draft created for it.
type ClusterDraft struct {
	Cluster Cluster
	Draft   Draft
}
