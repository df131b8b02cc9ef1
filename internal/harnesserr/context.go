package harnesserr

import "strings"

// ContextError carries a cause plus a flat list of context layers added by
// successive calls to WithLayer. Unlike fmt.Errorf("%w: %w", ...) chains,
// it never nests another ContextError inside itself: WithLayer always
// appends to the same Layers slice, so arbitrarily many layers cost O(1)
// stack depth to build and to format. This is required by the 1000-layer
// regression the executor's error handling is grounded on: a recursive
// wrap-of-a-wrap implementation overflows the stack formatting a chain that
// deep, a flat slice does not.
type ContextError struct {
	Cause  error
	Layers []string
}

// WithLayer returns a ContextError with msg appended as the outermost
// layer. If err is already a *ContextError, the new layer is appended to
// its existing Layers slice instead of wrapping it again.
func WithLayer(err error, msg string) *ContextError {
	if ce, ok := err.(*ContextError); ok {
		layers := make([]string, len(ce.Layers)+1)
		copy(layers, ce.Layers)
		layers[len(ce.Layers)] = msg
		return &ContextError{Cause: ce.Cause, Layers: layers}
	}
	return &ContextError{Cause: err, Layers: []string{msg}}
}

// Error renders layers outermost-first, then the root cause, e.g.
// "Layer999: Layer998: ... : base error".
func (e *ContextError) Error() string {
	var b strings.Builder
	for i := len(e.Layers) - 1; i >= 0; i-- {
		b.WriteString(e.Layers[i])
		b.WriteString(": ")
	}
	if e.Cause != nil {
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the root cause directly — one hop, not a rebuilt chain —
// so errors.Is/As see through the layering without recursing through it.
func (e *ContextError) Unwrap() error { return e.Cause }
