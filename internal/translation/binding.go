package translation

import (
	"context"
	"sync"
)

// Ticket is issued by [Binding.Begin] for one resolution.
type Ticket struct {
	Key string
	ctx context.Context
}

// Context is cancelled when the ticket is superseded or its binding is closed.
func (t Ticket) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// Binding tracks the text shown by one display surface.
//
// Each Begin replaces the surface's current key and cancels the previous pending fetch. Results
// completed for any other key are discarded, so switching language mid-flight never shows a stale
// translation.
type Binding struct {
	resolver *Resolver

	mu      sync.Mutex
	current string
	result  Result
	cancel  context.CancelFunc
	closed  bool
}

// Bind creates a [Binding] for one display surface.
func (r *Resolver) Bind() *Binding {
	return &Binding{resolver: r}
}

// Begin makes req the surface's current request and returns its synchronous result.
//
// When the result is Loading, the caller fetches with the ticket's context and reports back through [Binding.Complete].
func (b *Binding) Begin(ctx context.Context, req Request) (Result, Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}

	res := b.resolver.Lookup(req)
	ticket := Ticket{Key: req.Key()}
	b.current = ticket.Key
	b.result = res

	ctx, cancel := context.WithCancel(ctx)
	if res.Loading() && !b.closed {
		b.cancel = cancel
	} else {
		cancel()
	}
	ticket.ctx = ctx

	return res, ticket
}

// Complete applies res if t is still the surface's current key. It reports whether res was applied.
func (b *Binding) Complete(t Ticket, res Result) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || t.Key != b.current {
		return false
	}
	b.result = res
	return true
}

// Resolve begins req and, when a fetch is needed, runs it in the background.
// onUpdate is called with the fetched result only if it is still current. The synchronous result is returned.
func (b *Binding) Resolve(ctx context.Context, req Request, onUpdate func(Result)) Result {
	res, ticket := b.Begin(ctx, req)
	if !res.Loading() {
		return res
	}

	go func() {
		out, err := b.resolver.Fetch(ticket.Context(), req)
		if err != nil {
			return
		}
		if b.Complete(ticket, out) && onUpdate != nil {
			onUpdate(out)
		}
	}()

	return res
}

// Current returns the surface's latest applied result.
func (b *Binding) Current() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

// Close cancels any pending fetch and discards later completions.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}
