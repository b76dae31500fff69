package models

import "time"

type OwnerSettings struct {
	OwnerID       string
	ChildName     string
	ChildBirthday *time.Time
	UpdatedAt     time.Time
}
