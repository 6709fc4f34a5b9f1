package schedule

import "database/sql"

// Accessor reads and writes weekly_schedule rows.
type Accessor struct {
	db *sql.DB
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}
