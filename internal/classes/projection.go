package classes

import (
	"github.com/JaimeStill/school-feed/pkg/query"
	"github.com/JaimeStill/school-feed/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classes", "c").
	Project("id", "ID").
	Project("grade", "Grade").
	Project("class_name", "ClassName").
	Project("school_id", "SchoolID").
	Project("announcements", "Announcements").
	Project("created_at", "CreatedAt")

func scanClass(s repository.Scanner) (Class, error) {
	var c Class
	err := s.Scan(
		&c.ID,
		&c.Grade,
		&c.ClassName,
		&c.SchoolID,
		repository.UUIDArray(&c.Announcements),
		&c.CreatedAt,
	)
	return c, err
}
