package appointment

import "database/sql"

type Accessor struct {
	db *sql.DB
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}
