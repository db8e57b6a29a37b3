package jsonrpc

import "sync"

// Handler receives decoded pushes. err is set when the push could not be
// decoded; n still carries the subscription id and type.
type Handler func(n *Notification, err error)

type route struct {
	subType string
	handler Handler
}

// Router dispatches raw pushes to handlers by subscription id.
type Router struct {
	decoder *Decoder

	mu     sync.RWMutex
	routes map[string]route
}

func NewRouter(d *Decoder) *Router {
	return &Router{decoder: d, routes: make(map[string]route)}
}

// Register routes pushes for id to h, decoding them as subType.
func (r *Router) Register(id, subType string, h Handler) {
	r.mu.Lock()
	r.routes[id] = route{subType: subType, handler: h}
	r.mu.Unlock()
}

// Unregister drops the route for id and reports whether it existed.
func (r *Router) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.routes[id]
	delete(r.routes, id)
	return ok
}

func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// Dispatch decodes raw and hands it to the registered handler. Decode failures
// go to the handler and are also returned.
func (r *Router) Dispatch(raw []byte) error {
	n, err := ParseNotification(raw)
	if err != nil {
		return err
	}

	r.mu.RLock()
	rt, ok := r.routes[n.Subscription]
	r.mu.RUnlock()
	if !ok {
		return &UnknownSubscriptionError{ID: n.Subscription}
	}

	res, err := r.decoder.DecodePush(rt.subType, n.Result)
	rt.handler(&Notification{Subscription: n.Subscription, Type: rt.subType, Result: res}, err)
	return err
}
