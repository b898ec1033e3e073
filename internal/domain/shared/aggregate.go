package shared

// AggregateRoot is implemented by records that raise domain events
type AggregateRoot interface {
	GetID() int64
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides the event buffer of an aggregate.
// IDs are assigned by the backend; zero means "not created yet".
type BaseAggregateRoot struct {
	ID           int64
	domainEvents []DomainEvent
}

// GetID returns the backend-assigned identifier
func (a *BaseAggregateRoot) GetID() int64 {
	return a.ID
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
