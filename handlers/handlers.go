package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embeddingminds/sgps/ledger"
)

// API bundles the injected dependencies every handler needs. Handlers hang
// off this struct instead of a package-level connection so tests can
// construct an API around doubles.
type API struct {
	db     *pgxpool.Pool
	ledger *ledger.Service
}

// New creates the handler set around an explicit pool and ledger service.
func New(db *pgxpool.Pool, lg *ledger.Service) *API {
	return &API{db: db, ledger: lg}
}
