// Package repository provides the week-partitioned contest entry store.
package repository

import (
	"context"

	"github.com/penumbrapenned/penned/internal/domain/model"
)

// Store provides read/write access to contest entries, partitioned by week.
// Implementations convert every backend failure into the sentinel errors of
// this package; raw driver errors never cross this boundary.
type Store interface {
	// CountByAuthor returns how many entries in week carry exactly email.
	// Zero rows is (0, nil); a failed query is ErrStoreUnavailable.
	CountByAuthor(ctx context.Context, week model.WeekID, email string) (int, error)

	// ListAll returns every entry of week. Callers must not rely on order.
	ListAll(ctx context.Context, week model.WeekID) ([]model.Entry, error)

	// ListAllWeeks returns the entries of every configured week.
	ListAllWeeks(ctx context.Context) ([]model.Entry, error)

	// Create validates and persists draft, assigning ID and SubmittedAt.
	Create(ctx context.Context, week model.WeekID, draft model.Draft) (model.Entry, error)

	// CreateWithinQuota is Create guarded by an atomic per-author count:
	// when the author already has limit entries in week it returns a
	// *LimitError and writes nothing.
	CreateWithinQuota(ctx context.Context, week model.WeekID, draft model.Draft, limit int) (model.Entry, error)
}
