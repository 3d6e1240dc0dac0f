//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// JobListing is a job posted by an admin and visible to every user.
type JobListing struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Location  string    `json:"location"`
	Tags      []string  `json:"tags"`
	ApplyLink string    `json:"applyLink"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Course is a learning resource posted by an admin.
type Course struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// ListResponse wraps a list endpoint's items.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}
