package domain

import "context"

// Transaction exposes the bundle operations a persistence implementation must
// support within an atomic scope. Bundles passed in are cloned before being
// stored; bundles returned are clones of stored state.
type Transaction interface {
	Snapshot() TransactionView
	Create(partition Partition, bundle AnyBundle) (AnyBundle, error)
	Update(kind ResourceKind, partition Partition, id string, mutator func(AnyBundle) error) (AnyBundle, error)
	Delete(kind ResourceKind, partition Partition, id string) error
	Resolve(kind ResourceKind, partition Partition, id string) (AnyBundle, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// consistency checks.
type TransactionView interface {
	Resolve(kind ResourceKind, partition Partition, id string) (AnyBundle, bool)
	List(kind ResourceKind, partition Partition) []AnyBundle
	Exists(kind ResourceKind, partition Partition, id string) bool
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	Get(kind ResourceKind, partition Partition, id string) (AnyBundle, bool)
	List(kind ResourceKind, partition Partition) []AnyBundle
}
