package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/puzzlehunt/internal/progress"
)

// Feed delivers progression events to subscribers of a booking code.
type Feed interface {
	progress.Publisher
	Subscribe(code string) chan []byte
	Unsubscribe(code string, ch chan []byte)
}

// Broker is an in-process pub/sub for progression events, keyed by booking
// code.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for code.
func (b *Broker) Subscribe(code string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[code] == nil {
		b.subs[code] = make(map[chan []byte]struct{})
	}
	b.subs[code][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(code string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[code], ch)
	if len(b.subs[code]) == 0 {
		delete(b.subs, code)
	}
	b.mu.Unlock()
}

func (b *Broker) Publish(code string, ev progress.Event) {
	data, _ := json.Marshal(ev)
	b.deliver(code, data)
}

func (b *Broker) deliver(code string, data []byte) {
	b.mu.RLock()
	for ch := range b.subs[code] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
