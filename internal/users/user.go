// Package users resolves user memberships and the display fields shown on posts.
package users

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// User is a member of one or more schools and classes.
type User struct {
	ID             uuid.UUID   `json:"id"`
	UserName       string      `json:"userName"`
	ProfilePicture string      `json:"profilePicture"`
	Roles          []string    `json:"roles"`
	Schools        []uuid.UUID `json:"schools"`
	Classes        []uuid.UUID `json:"classes"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// InClass reports whether the user is registered in classID.
func (u *User) InClass(classID uuid.UUID) bool {
	return slices.Contains(u.Classes, classID)
}

// InSchool reports whether the user belongs to schoolID.
func (u *User) InSchool(schoolID uuid.UUID) bool {
	return slices.Contains(u.Schools, schoolID)
}

// CreateCommand contains the fields required to register a user.
type CreateCommand struct {
	UserName       string      `json:"userName"`
	ProfilePicture string      `json:"profilePicture"`
	Roles          []string    `json:"roles"`
	Schools        []uuid.UUID `json:"schools"`
	Classes        []uuid.UUID `json:"classes"`
}
