package halhttp

import (
	"context"

	"github.com/halware/halcommon/hal"
)

type contextKey struct{}

// NewContext returns a context carrying the given resource.
func NewContext(ctx context.Context, resource *hal.Resource) context.Context {
	return context.WithValue(ctx, contextKey{}, resource)
}

// FromContext returns the resource carried by the context, if any.
func FromContext(ctx context.Context) (*hal.Resource, bool) {
	resource, ok := ctx.Value(contextKey{}).(*hal.Resource)
	return resource, ok
}
