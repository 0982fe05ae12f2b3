package llm

import "github.com/ahrav/go-concord/internal/ports"

// Middleware wraps an Annotator with a cross-cutting concern.
type Middleware func(ports.Annotator) ports.Annotator

// Chain applies middlewares so that the first listed is outermost.
func Chain(annotator ports.Annotator, middlewares ...Middleware) ports.Annotator {
	for i := len(middlewares) - 1; i >= 0; i-- {
		annotator = middlewares[i](annotator)
	}
	return annotator
}
