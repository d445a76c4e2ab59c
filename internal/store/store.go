package store

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const newestFirst = "create_time DESC, id DESC"

// Store is the data-access layer for users, needs and service offers
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an opened database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support row locks.
// SQLite serialises writers itself.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern, used with `LOWER(col) LIKE ? ESCAPE '\'`
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
