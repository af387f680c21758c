package posts

import (
	"github.com/JaimeStill/school-feed/pkg/query"
	"github.com/JaimeStill/school-feed/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "posts", "p").
	Join("JOIN public.users u ON u.id = p.posted_by").
	Project("id", "ID").
	Project("posted_by", "PostedBy").
	ProjectFrom("u", "user_name", "UserName").
	ProjectFrom("u", "profile_picture", "ProfilePicture").
	ProjectFrom("u", "roles", "Roles").
	Project("heading", "Heading").
	Project("body", "Body").
	Project("content_pictures", "ContentPictures").
	Project("documents", "Documents").
	Project("content_type", "ContentType").
	Project("class_id", "ClassID").
	Project("grade", "Grade").
	Project("school_id", "SchoolID").
	Project("reactions", "Reactions").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var newestFirst = query.SortField{Field: "CreatedAt", Descending: true}

func scanPost(s repository.Scanner) (Post, error) {
	var p Post
	err := s.Scan(
		&p.ID,
		&p.PostedBy.ID,
		&p.PostedBy.UserName,
		&p.PostedBy.ProfilePicture,
		repository.Array(&p.PostedBy.Roles),
		&p.Heading,
		&p.Body,
		repository.Array(&p.ContentPictures),
		repository.Array(&p.Documents),
		&p.ContentType,
		&p.ClassID,
		&p.Grade,
		&p.SchoolID,
		&p.Reactions,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if p.ContentPictures == nil {
		p.ContentPictures = []string{}
	}
	if p.Documents == nil {
		p.Documents = []string{}
	}
	return p, err
}
