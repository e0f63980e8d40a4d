// Package store owns all interaction with the subscriber database.
package store

import (
	"context"

	"coregw/internal/subscriber/models"
)

// Filter narrows a subscriber listing. Zero values mean "no constraint".
// The sst/sd pair matches records having at least one slice whose sst equals
// the given value, and whose sd equals the given value when supplied.
type Filter struct {
	Name string
	Sst  *int
	Sd   string
}

// Store is the subscriber repository contract. Implementations return
// sentinel errors (pkg/platform/sentinel) for not-found and duplicate-key
// facts; any other error is an infrastructure failure the service reports
// as storage-unavailable.
//
// List results come back in a stable, implementation-defined order.
type Store interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]*models.SubscriberRecord, error)
	GetByIMSI(ctx context.Context, imsi string) (*models.SubscriberRecord, error)
	Create(ctx context.Context, rec *models.SubscriberRecord) error
	ReplaceByIMSI(ctx context.Context, imsi string, rec *models.SubscriberRecord) error
	DeleteByIMSI(ctx context.Context, imsi string) error
}

// Matches reports whether rec satisfies the filter. This predicate is the
// contract; SQL translation in the Postgres store must agree with it, and
// the in-memory store uses it directly.
func (f Filter) Matches(rec *models.SubscriberRecord) bool {
	if f.Name != "" && !containsFold(rec.Name, f.Name) {
		return false
	}
	if f.Sst != nil {
		for _, sl := range rec.Slices {
			if sl.Sst == *f.Sst && (f.Sd == "" || sl.Sd == f.Sd) {
				return true
			}
		}
		return false
	}
	return true
}
