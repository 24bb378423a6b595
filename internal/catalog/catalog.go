package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/cmdbar/internal/command"
	"github.com/dshills/cmdbar/internal/logging"
)

// Source produces commands for the catalog.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]*command.Command, error)
}

// Catalog combines sources and caches the result until invalidated.
// It is safe for concurrent use.
type Catalog struct {
	mu      sync.Mutex
	sources []Source
	logger  *logging.Logger

	cached []*command.Command
	stale  bool
	builds int
}

// New creates a catalog over sources, in order.
func New(logger *logging.Logger, sources ...Source) *Catalog {
	if logger == nil {
		logger = logging.Nop
	}
	return &Catalog{
		sources: sources,
		logger:  logger.WithComponent("catalog"),
		stale:   true,
	}
}

// Catalog returns the commands of all sources. Sources that fail are
// skipped with a warning; an error is returned only when every source
// failed. The returned slice is shared and must not be modified.
func (c *Catalog) Catalog(ctx context.Context) ([]*command.Command, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stale {
		return c.cached, nil
	}

	cmds, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	c.cached = cmds
	c.stale = false
	c.builds++
	return cmds, nil
}

func (c *Catalog) build(ctx context.Context) ([]*command.Command, error) {
	var (
		cmds   []*command.Command
		errs   []error
		loaded int
	)

	for _, src := range c.sources {
		list, err := src.Load(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.logger.WithField("source", src.Name()).Warn("skipping source: %v", err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		loaded++

		for _, cmd := range list {
			if err := cmd.Validate(); err != nil {
				c.logger.WithField("source", src.Name()).Warn("skipping command: %v", err)
				continue
			}
			cmds = append(cmds, cmd)
		}
	}

	if loaded == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoCommands, errors.Join(errs...))
	}
	c.logger.Debug("built %d commands from %d sources", len(cmds), loaded)
	return cmds, nil
}

// Invalidate forces the next Catalog call to rebuild.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

// Builds returns how many times the catalog has been built.
func (c *Catalog) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}
