package iterator

import (
	"sync"
	"time"

	"github.com/simon020286/go-step-iterator/models"
)

// Notifier distributes named events to the listeners registered for them.
// Publishing is synchronous and follows registration order.
// A Notifier must not be copied after first use
type Notifier struct {
	listeners map[models.EventType][]models.EventListener
	mutex     sync.RWMutex
}

// NewNotifier creates a notifier with no listeners
func NewNotifier() *Notifier {
	return &Notifier{
		listeners: make(map[models.EventType][]models.EventListener),
	}
}

// On registers a listener for event and returns the notifier for chaining
func (n *Notifier) On(event models.EventType, listener models.EventListener) *Notifier {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[models.EventType][]models.EventListener)
	}
	n.listeners[event] = append(n.listeners[event], listener)
	return n
}

// OnFunc registers a plain function for event
func (n *Notifier) OnFunc(event models.EventType, fn func(models.Event)) *Notifier {
	return n.On(event, models.EventListenerFunc(fn))
}

// OnBeforeEach subscribes to beforeEach with a typed callback
func (n *Notifier) OnBeforeEach(fn func(step *models.Step)) *Notifier {
	return n.OnFunc(models.EventBeforeEach, func(ev models.Event) {
		fn(ev.Step())
	})
}

// OnAfterEach subscribes to afterEach with a typed callback
func (n *Notifier) OnAfterEach(fn func(err error, result any, step *models.Step)) *Notifier {
	return n.OnFunc(models.EventAfterEach, func(ev models.Event) {
		result, err := ev.Outcome()
		fn(err, result, ev.Step())
	})
}

// Emit invokes every listener registered for event with args.
// A panicking listener aborts the dispatch and propagates to the caller
func (n *Notifier) Emit(event models.EventType, args ...any) {
	n.mutex.RLock()
	listeners := make([]models.EventListener, len(n.listeners[event]))
	copy(listeners, n.listeners[event])
	n.mutex.RUnlock()

	if len(listeners) == 0 {
		return
	}

	ev := models.Event{
		Type:      event,
		Timestamp: time.Now(),
		Args:      args,
	}
	for _, listener := range listeners {
		listener.OnEvent(ev)
	}
}

// ListenerCount returns the number of listeners registered for event
func (n *Notifier) ListenerCount(event models.EventType) int {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return len(n.listeners[event])
}

// RemoveAllListeners removes all listeners
func (n *Notifier) RemoveAllListeners() {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.listeners = make(map[models.EventType][]models.EventListener)
}
