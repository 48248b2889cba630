// Package repomanager wires repository constructors together so services can
// obtain repositories bound to either the pooled connection or an open
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"clubtourney-server/internal/dbx"
	"clubtourney-server/internal/server/repositories/refreshtokens"
	"clubtourney-server/internal/server/repositories/tournaments"
	"clubtourney-server/internal/server/repositories/users"
)

// RepositoryManager vends repositories over a DBTX and owns schema setup.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Tournaments(db dbx.DBTX) tournaments.Repository
}
