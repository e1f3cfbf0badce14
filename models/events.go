package models

import (
	"time"
)

// EventType names a lifecycle event published by a notifier
type EventType string

const (
	// EventBeforeEach is published with (step) before a step runs
	EventBeforeEach EventType = "beforeEach"
	// EventAfterEach is published with (err, result, step) after a step completes
	EventAfterEach EventType = "afterEach"
)

// Event is what a listener receives when a named event is published
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Args      []any     `json:"args"`
}

// Step returns the step carried by a beforeEach or afterEach event
func (e Event) Step() *Step {
	if len(e.Args) == 0 {
		return nil
	}
	step, _ := e.Args[len(e.Args)-1].(*Step)
	return step
}

// Outcome returns the result and error carried by an afterEach event
func (e Event) Outcome() (any, error) {
	if e.Type != EventAfterEach || len(e.Args) < 2 {
		return nil, nil
	}
	err, _ := e.Args[0].(error)
	return e.Args[1], err
}

// EventListener must be implemented to receive events from a notifier
type EventListener interface {
	OnEvent(event Event)
}

// EventListenerFunc is an adapter to use functions as EventListener
type EventListenerFunc func(event Event)

func (f EventListenerFunc) OnEvent(event Event) {
	f(event)
}
