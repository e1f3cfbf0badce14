package iterator

import (
	"github.com/simon020286/go-step-iterator/models"
)

var defaultBase = New(nil)

// Default returns the process-wide instance. Library code should take
// a *Base instead of reaching for it
func Default() *Base {
	return defaultBase
}

// MakeIterator makes an iterator on the default instance
func MakeIterator(opts *Options) IteratorFunc {
	return defaultBase.MakeIterator(opts)
}

// On registers a listener on the default instance
func On(event models.EventType, listener models.EventListener) *Notifier {
	return defaultBase.On(event, listener)
}
