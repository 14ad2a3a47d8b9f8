package halhttp

import (
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/gorilla/mux"
	"github.com/justinas/alice"

	"github.com/halware/halcommon/hal"
)

// Options configures the per-request resource decoration.
type Options struct {
	// Server is the server context every relation is resolved under.
	Server string

	// Linker resolves relation names for every request.  Optional; without
	// one, only override-only links resolve.
	Linker hal.Linker

	// Logger receives resolution diagnostics.  Optional.
	Logger log.Logger

	// Unresolvable counts link candidates that failed to resolve.  Optional.
	Unresolvable metrics.Counter
}

// Decorate produces a constructor that equips each request with its own root
// resource, using the request's route variables as the resolution params.
// Handlers downstream obtain the resource via FromContext.
func Decorate(o Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			resource := hal.New(hal.Options{
				Server:       o.Server,
				Params:       mux.Vars(request),
				Linker:       o.Linker,
				Logger:       o.Logger,
				Unresolvable: o.Unresolvable,
			})

			next.ServeHTTP(
				response,
				request.WithContext(NewContext(request.Context(), resource)),
			)
		})
	}
}

// Chain produces an alice.Chain that begins with Decorate(o), followed by
// any additional constructors in order.
func Chain(o Options, constructors ...alice.Constructor) alice.Chain {
	return alice.New(
		append([]alice.Constructor{Decorate(o)}, constructors...)...,
	)
}
