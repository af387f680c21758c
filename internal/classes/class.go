// Package classes matches classes by grade, name and school and maintains
// each class's ordered list of announcement post ids.
package classes

import (
	"time"

	"github.com/google/uuid"
)

// Class groups students of one grade within a school.
// Announcements holds post ids in the order they were linked.
type Class struct {
	ID            uuid.UUID   `json:"id"`
	Grade         string      `json:"grade"`
	ClassName     string      `json:"className"`
	SchoolID      uuid.UUID   `json:"schoolId"`
	Announcements []uuid.UUID `json:"announcements"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// MatchQuery identifies a class by its natural key.
type MatchQuery struct {
	Grade     string
	ClassName string
	SchoolID  uuid.UUID
}

// CreateCommand contains the fields required to register a class.
type CreateCommand struct {
	Grade     string    `json:"grade"`
	ClassName string    `json:"className"`
	SchoolID  uuid.UUID `json:"schoolId"`
}
