package service

// EventPublisher receives user-lifecycle events for live admin dashboards.
// Implemented by the websocket hub; a nil publisher disables broadcasting.
type EventPublisher interface {
	Publish(event string, payload any)
}
