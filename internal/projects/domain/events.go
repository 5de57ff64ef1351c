package domain

import "time"

type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent tells list views of one owner that their list must be re-fetched.
type ChangeEvent struct {
	Type      ChangeType `json:"type"`
	ProjectID string     `json:"project_id"`
	At        time.Time  `json:"at"`
}
