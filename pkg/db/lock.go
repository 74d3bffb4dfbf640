package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockForUpdate adds a row lock on dialects that support it. SQLite
// serializes writers on its own, so the clause is skipped there.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
