package layers

import (
	"strconv"
)

// IDGenerator hands out IDs for new shapes and layers.
type IDGenerator interface {
	NewShapeID() string
	NewLayerID() string
}

// reserver is implemented by generators that have to skip IDs found in a
// loaded document.
type reserver interface {
	Reserve(id string)
}

// Counter generates short sequential IDs ("s1", "s2", … and "l1", "l2", …).
// The zero value is ready to use.
type Counter struct {
	shapes int
	layers int
}

func (c *Counter) NewShapeID() string {
	c.shapes++
	return "s" + strconv.Itoa(c.shapes)
}

func (c *Counter) NewLayerID() string {
	c.layers++
	return "l" + strconv.Itoa(c.layers)
}

type options struct {
	historySize int
	snapRadius  float64
	minZoom     float64
	ids         IDGenerator
}

// Option configures a Manager.
type Option func(*options)

// WithHistorySize bounds the number of undoable steps.
func WithHistorySize(n int) Option {
	return func(o *options) { o.historySize = n }
}

// WithSnapRadius sets the screen-space snap distance at zoom 1.
func WithSnapRadius(r float64) Option {
	return func(o *options) { o.snapRadius = r }
}

// WithMinZoom sets the smallest zoom factor snapping has to support.
func WithMinZoom(z float64) Option {
	return func(o *options) { o.minZoom = z }
}

// WithIDGenerator replaces the default typeid generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// Reserve advances the counter past id when id has the counter's own form,
// so IDs saved by an earlier counter are never handed out again.
func (c *Counter) Reserve(id string) {
	if len(id) < 2 {
		return
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil || n <= 0 {
		return
	}
	switch id[0] {
	case 's':
		c.shapes = max(c.shapes, n)
	case 'l':
		c.layers = max(c.layers, n)
	}
}
