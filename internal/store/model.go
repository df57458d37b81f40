package store

import "time"

// UnassignedPartition is the reserved partition key holding sections and
// recordings created before any project exists.
const UnassignedPartition = "unassigned"

// DefaultProjectName is the name given to an implicitly created project.
const DefaultProjectName = "Untitled"

// Project is a container for sections and recordings, referenced through
// partition keys, never by embedding.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastSavedAt *time.Time `json:"lastSavedAt,omitempty"`
}

// Section is a block of song text with a type tag.
type Section struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	Starred   bool      `json:"starred"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recording is a stored audio take. Immutable once validated and stored,
// except for its display name. Deleting a Recording does not delete the
// underlying artifact file.
type Recording struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	URI             string    `json:"uri"`
	DurationSeconds int       `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SectionTypes returns the seeded section type tags. The enumeration is
// open: any non-empty string is a valid type.
func SectionTypes() []string {
	return []string{"verse", "chorus", "bridge", "pre-chorus", "outro", "tag", "intro", "hook"}
}
