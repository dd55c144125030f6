package reactive

import (
	"github.com/google/uuid"

	"github.com/okian/edupanel/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithGraph replaces the default dashboard graph.
func WithGraph(g *Graph) Option {
	return func(c *Controller) {
		if g != nil {
			c.graph = g
		}
	}
}

// WithIDGenerator sets the source of computation ids, uuid.New by default.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(c *Controller) {
		if gen != nil {
			c.newID = gen
		}
	}
}
