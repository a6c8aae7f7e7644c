package domain

import "time"

// Project is a named corpus. Documents, chunks and vectors are scoped to it.
type Project struct {
	// ID is the unique identifier for the project.
	ID string

	// Name is the human-readable project name.
	Name string

	// Description is optional free text.
	Description string

	// CreatedAt is when the project was created.
	CreatedAt time.Time
}
