package models

import "time"

type DraftStatus string

const (
	DraftStatusDraft    DraftStatus = "draft"
	DraftStatusApproved DraftStatus = "approved"
	DraftStatusRejected DraftStatus = "rejected"
)

type Draft struct {
	ID            string
	OwnerID       string
	ClusterID     string
	PhotoIDs      []string
	Title         string
	Description   string
	Theme         Theme
	BackgroundKey *string
	Status        DraftStatus
	DateRange     string
	AgeString     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (d Draft) Editable() bool {
	return d.Status == DraftStatusDraft
}

// DraftFields is a partial update; nil fields are left untouched.
type DraftFields struct {
	Title       *string
	Description *string
	Theme       *string
}

// Apply returns a copy of d with the non-nil fields set.
func (f DraftFields) Apply(d Draft) Draft {
	if f.Title != nil {
		d.Title = *f.Title
	}
	if f.Description != nil {
		d.Description = *f.Description
	}
	if f.Theme != nil {
		d.Theme = NormalizeTheme(*f.Theme)
	}
	return d
}

type PagePhoto struct {
	ID  string
	URL string
}

// Page is the published view of an approved draft.
type Page struct {
	ID            string
	Title         string
	Description   string
	Theme         Theme
	BackgroundURL string
	DateRange     string
	AgeString     string
	Photos        []PagePhoto
	Status        DraftStatus
}
