// Package repomanager wires the repository constructors to a database handle
// and runs schema migrations at startup.
package repomanager

import (
	"context"
	"database/sql"

	"minventory/internal/dbx"
	"minventory/internal/server/repositories/categories"
	"minventory/internal/server/repositories/items"
	"minventory/internal/server/repositories/loans"
	"minventory/internal/server/repositories/questions"
	"minventory/internal/server/repositories/transactions"
	"minventory/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a handle, which may be
// the pool itself or a transaction started with dbx.WithTx.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	Items(db dbx.DBTX) items.Repository
	Questions(db dbx.DBTX) questions.Repository
	Loans(db dbx.DBTX) loans.Repository
	Transactions(db dbx.DBTX) transactions.Repository

	Conn() *sql.DB
	RunMigrations(ctx context.Context) error
	Close() error
}
