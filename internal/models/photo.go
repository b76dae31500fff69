package models

import "time"

type Photo struct {
	ID          string
	OwnerID     string
	ObjectKey   string
	ThumbKey    *string
	Filename    string
	SizeBytes   int64
	ContentType string
	TakenAt     *time.Time
	DeletedAt   *time.Time
	CreatedAt   time.Time
}

// ObjectKeys lists every storage object backing the photo.
func (p Photo) ObjectKeys() []string {
	keys := []string{p.ObjectKey}
	if p.ThumbKey != nil && *p.ThumbKey != "" {
		keys = append(keys, *p.ThumbKey)
	}
	return keys
}
