package interfaces

// EventPublisher delivers engine outcome events to an external system.
// Publishing is fire-and-forget from the engine's point of view: a publish
// failure never changes processing state.
type EventPublisher interface {
	Publish(topic string, event any) error
}
