package storage

import "time"

// SlugRecord binds a slug to an uploaded file.
type SlugRecord struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	UserID    string    `json:"user_id"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats is the registry summary served to the trusted subnet.
type Stats struct {
	Slugs int `json:"slugs"`
	Users int `json:"users"`
}
