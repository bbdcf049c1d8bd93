// Package storage defines the transaction handle shared by the store
// implementations. The service orchestrates multi-record changes against it
// so a failed step rolls everything back.
package storage

type Tx interface {
	Commit() error
	Rollback() error
}
