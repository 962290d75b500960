package folding

import (
	"fmt"
	"log"
	"reflect"
)

// EventType names a committed folding mutation
type EventType string

const (
	EventChunksCollapsed EventType = "chunks-collapsed"
	EventChunkExpanded   EventType = "chunk-expanded"
	EventStateReset      EventType = "state-reset"
)

// Event describes one committed mutation of the folding state
type Event struct {
	Type EventType
	// GroupIDs lists the groups created (collapse) or removed (expand)
	GroupIDs []string
	// Absorbed lists groups that were folded into a new, larger group
	Absorbed []string
}

// State is a read-only snapshot handed to clients with every event
type State struct {
	Visible []string
	Groups  []CollapsedGroup
}

// Client receives folding events
type Client interface {
	OnStateChanged(ev Event, st State)
}

// ClientFunc adapts a plain function to the Client interface
type ClientFunc func(ev Event, st State)

// OnStateChanged calls f(ev, st)
func (f ClientFunc) OnStateChanged(ev Event, st State) {
	f(ev, st)
}

type registration struct {
	client Client
}

// AddClient registers a client. Clients are notified in registration order.
// The returned function removes the registration; it also works for
// ClientFunc values, which RemoveClient cannot compare.
func (c *Controller) AddClient(client Client) (remove func()) {
	if client == nil {
		return func() {}
	}
	reg := &registration{client: client}
	c.clients = append(c.clients, reg)
	return func() { c.removeRegistration(reg) }
}

// RemoveClient unregisters a previously added client
func (c *Controller) RemoveClient(client Client) {
	if client == nil || !reflect.TypeOf(client).Comparable() {
		return
	}
	for _, reg := range c.clients {
		if reg.client == client {
			c.removeRegistration(reg)
			return
		}
	}
}

func (c *Controller) removeRegistration(reg *registration) {
	for idx, existing := range c.clients {
		if existing == reg {
			c.clients = append(c.clients[:idx:idx], c.clients[idx+1:]...)
			return
		}
	}
}

// emit delivers ev to a snapshot of the client list so that clients added or
// removed during dispatch only affect later events.
func (c *Controller) emit(ev Event) {
	clients := make([]*registration, len(c.clients))
	copy(clients, c.clients)
	st := c.snapshot()

	c.dispatching = true
	defer func() { c.dispatching = false }()

	for _, reg := range clients {
		notify(reg.client, ev, st)
	}
}

func notify(client Client, ev Event, st State) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("folding: client panicked on %s: %v", ev.Type, r)
		}
	}()
	client.OnStateChanged(ev, st)
}

func (c *Controller) guard(op string) error {
	if c.dispatching {
		err := fmt.Errorf("%s: %w", op, ErrReentrantMutation)
		log.Printf("folding: %v", err)
		return err
	}
	return nil
}
