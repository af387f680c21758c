package users

import (
	"github.com/JaimeStill/school-feed/pkg/query"
	"github.com/JaimeStill/school-feed/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("user_name", "UserName").
	Project("profile_picture", "ProfilePicture").
	Project("roles", "Roles").
	Project("schools", "Schools").
	Project("classes", "Classes").
	Project("created_at", "CreatedAt")

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID,
		&u.UserName,
		&u.ProfilePicture,
		repository.Array(&u.Roles),
		repository.UUIDArray(&u.Schools),
		repository.UUIDArray(&u.Classes),
		&u.CreatedAt,
	)
	return u, err
}
