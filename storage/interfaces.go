package storage

import "github.com/lordyo/podcast-analytics/models"

// ObservationWriter is the interface any tidy-table storage backend must
// satisfy.
type ObservationWriter interface {
	Write(observations []*models.TidyObservation) error
	Close() error
}

// ObservationReader fetches the stored tidy table back for the views.
type ObservationReader interface {
	FetchAll() ([]*models.TidyObservation, error)
}
