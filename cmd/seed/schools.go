package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// source is shared by every seeder so -file applies to all of them.
var source = &seedSource{}

func init() {
	registerSeeder(&userSeeder{src: source})
	registerSeeder(&classSeeder{src: source})
	registerSeeder(&schoolSeeder{src: source})
}

// SchoolSeedData represents the JSON structure for school seed files.
type SchoolSeedData struct {
	Schools []SchoolSeed `json:"schools"`
}

type SchoolSeed struct {
	ID         uuid.UUID   `json:"id"`
	SchoolName string      `json:"schoolName"`
	Classes    []ClassSeed `json:"classes"`
	Users      []UserSeed  `json:"users"`
}

type ClassSeed struct {
	ID        uuid.UUID `json:"id"`
	Grade     string    `json:"grade"`
	ClassName string    `json:"className"`
}

type UserSeed struct {
	ID             uuid.UUID   `json:"id"`
	UserName       string      `json:"userName"`
	ProfilePicture string      `json:"profilePicture"`
	Roles          []string    `json:"roles"`
	Classes        []uuid.UUID `json:"classes"`
}

// seedSource loads seed data from an external file or the embedded default.
type seedSource struct {
	file string
}

func (s *seedSource) load() (*SchoolSeedData, error) {
	var content []byte
	var err error

	if s.file != "" {
		content, err = os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	} else {
		content, err = seedFiles.ReadFile("seeds/schools.json")
		if err != nil {
			return nil, fmt.Errorf("read embedded seed file: %w", err)
		}
	}

	var data SchoolSeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}

	return &data, nil
}

// validate rejects user class references that no school in the file defines.
func (d *SchoolSeedData) validate() error {
	known := map[uuid.UUID]bool{}
	for _, school := range d.Schools {
		for _, class := range school.Classes {
			known[class.ID] = true
		}
	}

	for _, school := range d.Schools {
		for _, user := range school.Users {
			for _, id := range user.Classes {
				if !known[id] {
					return fmt.Errorf("user %s references unknown class %s", user.UserName, id)
				}
			}
		}
	}
	return nil
}

// users returns every user in the seed data, for token issuing.
func (s *seedSource) users() ([]UserSeed, error) {
	data, err := s.load()
	if err != nil {
		return nil, err
	}

	var result []UserSeed
	for _, school := range data.Schools {
		result = append(result, school.Users...)
	}
	return result, nil
}

type schoolSeeder struct {
	src *seedSource
}

func (s *schoolSeeder) Name() string        { return "schools" }
func (s *schoolSeeder) Description() string { return "Seeds schools" }
func (s *schoolSeeder) Requires() []string  { return nil }

func (s *schoolSeeder) Seed(ctx context.Context, tx *sql.Tx) error {
	const query = `
		INSERT INTO schools (id, school_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			school_name = EXCLUDED.school_name`

	data, err := s.src.load()
	if err != nil {
		return err
	}

	for _, school := range data.Schools {
		if _, err := tx.ExecContext(ctx, query, school.ID, school.SchoolName); err != nil {
			return fmt.Errorf("save school %s: %w", school.SchoolName, err)
		}
	}
	return nil
}

type classSeeder struct {
	src *seedSource
}

func (s *classSeeder) Name() string        { return "classes" }
func (s *classSeeder) Description() string { return "Seeds classes under their schools" }
func (s *classSeeder) Requires() []string  { return []string{"schools"} }

func (s *classSeeder) Seed(ctx context.Context, tx *sql.Tx) error {
	const query = `
		INSERT INTO classes (id, grade, class_name, school_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			grade = EXCLUDED.grade,
			class_name = EXCLUDED.class_name`

	data, err := s.src.load()
	if err != nil {
		return err
	}

	for _, school := range data.Schools {
		for _, class := range school.Classes {
			if _, err := tx.ExecContext(ctx, query, class.ID, class.Grade, class.ClassName, school.ID); err != nil {
				return fmt.Errorf("save class %s %s: %w", class.Grade, class.ClassName, err)
			}
		}
	}
	return nil
}

type userSeeder struct {
	src *seedSource
}

func (s *userSeeder) Name() string { return "users" }
func (s *userSeeder) Description() string {
	return "Seeds users with their school and class memberships"
}
func (s *userSeeder) Requires() []string { return []string{"schools", "classes"} }

func (s *userSeeder) Seed(ctx context.Context, tx *sql.Tx) error {
	const query = `
		INSERT INTO users (id, user_name, profile_picture, roles, schools, classes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			user_name = EXCLUDED.user_name,
			profile_picture = EXCLUDED.profile_picture,
			roles = EXCLUDED.roles,
			schools = EXCLUDED.schools,
			classes = EXCLUDED.classes`

	data, err := s.src.load()
	if err != nil {
		return err
	}

	for _, school := range data.Schools {
		for _, user := range school.Users {
			roles := user.Roles
			if roles == nil {
				roles = []string{}
			}
			classes := user.Classes
			if classes == nil {
				classes = []uuid.UUID{}
			}

			_, err := tx.ExecContext(ctx, query,
				user.ID, user.UserName, user.ProfilePicture, roles, []uuid.UUID{school.ID}, classes,
			)
			if err != nil {
				return fmt.Errorf("save user %s: %w", user.UserName, err)
			}
		}
	}
	return nil
}
