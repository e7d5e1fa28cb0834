// Package storage defines the persistence gateway: the contract any
// database backend must satisfy to serve a resource.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers (HTTP layer) should not know or care which database they are
// talking to. By depending only on Gateway:
//
//   - Switching databases = implement the interface for the new DB,
//     change the wiring in main.go. Zero handler changes.
//
//   - Writing tests = pass a fake that satisfies the interface.
//
// The interface is generic over the record type, so the same contract
// serves every resource (Turma, Nivel, Pessoa).
package storage

import "context"

// Filter is a column → value predicate selecting the rows a read, update
// or delete applies to. All pairs must match (AND).
type Filter map[string]any

// ByID selects the row with the given primary key.
func ByID(id int64) Filter {
	return Filter{"id": id}
}

// Gateway is the data-access contract for one table of records of type T.
//
// Not-found is never an error: FindOne returns (nil, nil) and Update /
// Destroy report zero affected rows. Any returned error is a storage
// failure (constraint violation, connection problem, bad filter).
type Gateway[T any] interface {
	// FindAll returns every record. Returns an empty slice (not nil) when
	// the table is empty.
	FindAll(ctx context.Context) ([]T, error)

	// FindOne returns the first record matching filter, or nil.
	FindOne(ctx context.Context, filter Filter) (*T, error)

	// Create inserts record and fills in its generated fields (id,
	// timestamps) in place.
	Create(ctx context.Context, record *T) error

	// Update overwrites the given columns on every row matching filter
	// and returns how many rows changed.
	Update(ctx context.Context, fields map[string]any, filter Filter) (int64, error)

	// Destroy hard-deletes every row matching filter and returns how many
	// rows were removed.
	Destroy(ctx context.Context, filter Filter) (int64, error)
}
