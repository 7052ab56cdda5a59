package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// collectionOps is the capability set the diff algorithm needs for one child
// collection: identifier extraction, the store primitives, and an optional
// prepare hook that runs before an item's row is written (media
// materialization).
type collectionOps[T any] struct {
	id        func(T) uuid.UUID
	listIDs   func(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error)
	deleteIDs func(ctx context.Context, ids []uuid.UUID) error
	prepare   func(ctx context.Context, parentID uuid.UUID, item T) (T, error)
	insert    func(ctx context.Context, parentID uuid.UUID, item T) error
	update    func(ctx context.Context, item T) error
}

// reconcileCollection brings the stored child collection of parentID to
// match incoming: rows whose identifiers are absent from incoming are
// deleted first, then every incoming item is inserted (no identifier) or
// updated (identifier kept, parent linkage untouched) in input order.
//
// The steps commit independently; a failure partway leaves the collection
// partially reconciled and the caller re-reconciles from store state on
// retry.
func reconcileCollection[T any](ctx context.Context, parentID uuid.UUID, incoming []T, ops collectionOps[T]) error {
	existing, err := ops.listIDs(ctx, parentID)
	if err != nil {
		return fmt.Errorf("list existing: %w", err)
	}

	incomingIDs := make(map[uuid.UUID]struct{}, len(incoming))
	for _, item := range incoming {
		if id := ops.id(item); id != uuid.Nil {
			incomingIDs[id] = struct{}{}
		}
	}

	var toDelete []uuid.UUID
	for _, id := range existing {
		if _, keep := incomingIDs[id]; !keep {
			toDelete = append(toDelete, id)
		}
	}

	// deletions precede writes of the surviving set, so a reused position
	// can never collide with a row pending deletion
	if len(toDelete) > 0 {
		if err := ops.deleteIDs(ctx, toDelete); err != nil {
			return fmt.Errorf("delete absent rows: %w", err)
		}
	}

	for _, item := range incoming {
		if ops.prepare != nil {
			item, err = ops.prepare(ctx, parentID, item)
			if err != nil {
				return err
			}
		}

		if ops.id(item) == uuid.Nil {
			if err := ops.insert(ctx, parentID, item); err != nil {
				return fmt.Errorf("insert row: %w", err)
			}
			continue
		}

		if err := ops.update(ctx, item); err != nil {
			return fmt.Errorf("update row %s: %w", ops.id(item), err)
		}
	}

	return nil
}
