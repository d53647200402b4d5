package handlers

import (
	"errors"

	"github.com/acara-app/acara-api/internal/catalog"
	"github.com/acara-app/acara-api/internal/registry"
	"github.com/danielgtaylor/huma/v2"
)

// domainError translates store/catalog outcomes into HTTP responses. The
// first four are terminal for the call; only the 503 fallback (persistence
// unreachable or unexpected failure) is worth a caller-driven retry.
func domainError(err error) error {
	switch {
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return huma.Error404NotFound("Not found")
	case errors.Is(err, registry.ErrAlreadyRegistered):
		return huma.Error409Conflict("Already registered for this event")
	case errors.Is(err, registry.ErrCapacityExceeded):
		return huma.Error409Conflict("Event is at capacity")
	case errors.Is(err, registry.ErrCancelClosed):
		return huma.Error409Conflict("Event has started, cancellation is closed")
	case errors.Is(err, registry.ErrForbidden):
		return huma.Error403Forbidden("Registration belongs to another user")
	default:
		return huma.Error503ServiceUnavailable("Storage unavailable, please retry")
	}
}
