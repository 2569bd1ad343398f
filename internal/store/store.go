// Package store is the persistence layer. Every method is one logical unit of
// work: GORM wraps each call in its own implicit transaction, and the
// multi-statement operations (user deletion) run in an explicit one.
package store

import (
	"gorm.io/gorm"
)

// Store wraps the database handle with repository operations
type Store struct {
	db *gorm.DB
}

// New creates a Store over an initialized GORM connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
