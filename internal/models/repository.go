package models

// Repository persists the append-only event journal for external indexers.
type Repository interface {
	SaveEvent(event *Event) error
	ListRecentEvents(limit int) ([]*Event, error)
	ListEventsByAddress(address string, limit int) ([]*Event, error)
	Close() error
}
