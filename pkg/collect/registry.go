package collect

import (
	"context"
	"fmt"
	"log/slog"
)

// Registry is a keyed, build-once, read-many table of collectors. Dispatch
// on a path tries each registered collector in registration order, and
// returns the first one that both claims the path and successfully collects
// it. A collector's own errors during dispatch are swallowed (logged at
// debug) so a fallthrough to the next collector stays possible; see
// Registry.Collect.
type Registry struct {
	names      []string
	collectors map[string]Collector
}

// Builder constructs a Registry one collector at a time. Registering two
// collectors under the same name fails the eventual Build call.
type Builder struct {
	names      []string
	collectors map[string]Collector
	err        error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{collectors: make(map[string]Collector)}
}

// Register adds c to the builder in registration order. Registration order
// is the order Registry.Collect tries collectors in, which matters when more
// than one collector would accept the same path.
func (b *Builder) Register(c Collector) *Builder {
	if b.err != nil {
		return b
	}

	name := c.Name()
	if _, exists := b.collectors[name]; exists {
		b.err = fmt.Errorf("collector %q already registered", name)
		return b
	}

	b.collectors[name] = c
	b.names = append(b.names, name)

	return b
}

// Build finalizes the Registry. It fails if Register was called twice with
// the same collector name.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	names := make([]string, len(b.names))
	copy(names, b.names)

	collectors := make(map[string]Collector, len(b.collectors))
	for k, v := range b.collectors {
		collectors[k] = v
	}

	return &Registry{names: names, collectors: collectors}, nil
}

// Names returns the registered collector names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)

	return names
}

// Collect dispatches path to the first registered collector that claims it
// and successfully extracts its content. It returns false if no collector
// accepts the path, or every accepting collector's Collect call failed.
// Per-collector errors are logged at debug and otherwise swallowed: a binary
// file that fails one collector's validation should not poison indexing, the
// next registered collector gets a chance.
func (r *Registry) Collect(ctx context.Context, path string) (Document, bool) {
	for _, name := range r.names {
		c := r.collectors[name]

		ok, err := c.ShouldCollect(path)
		if err != nil {
			slog.DebugContext(ctx, "collector should-collect check failed",
				"collector", name, "path", path, "error", err)

			continue
		}

		if !ok {
			continue
		}

		lines, err := c.Collect(path)
		if err != nil {
			slog.DebugContext(ctx, "collector failed, falling through",
				"collector", name, "path", path, "error", err)

			continue
		}

		return Document{Collector: name, Lines: lines}, true
	}

	return Document{}, false
}
