package models

import "time"

// Timestamps provides the audit columns every table carries
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// touch sets both timestamps for a row about to be inserted
func (t *Timestamps) touch(created, updated time.Time) {
	now := time.Now()
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = created
	}
	t.CreatedAt = created
	t.UpdatedAt = updated
}
