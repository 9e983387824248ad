package dispatcher

import (
	"context"

	"github.com/pkamnerd/dorm-billing/internal/domain/event"
)

// Handler processes a domain event. Returning an error aborts a synchronous
// dispatch chain; asynchronous handlers only log their errors.
type Handler func(ctx context.Context, evt *event.Event) error

// handlerInfo pairs a handler with a name for logging
type handlerInfo struct {
	name    string
	handler Handler
}
