package storage

// Tx is the slice of database/sql transactions the service layer needs.
// *sql.Tx satisfies it; the in-memory test store provides its own.
type Tx interface {
	Commit() error
	Rollback() error
}
