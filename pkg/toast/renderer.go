package toast

// Handle identifies a painted notification inside a Renderer.
type Handle string

// Renderer draws notifications. The registry owns record lifetime; a
// renderer only paints what it is told and never decides when a
// notification goes away.
//
// Renderer methods are called with registry state locked and must not call
// back into the Registry synchronously.
type Renderer interface {
	Paint(rec Record) (Handle, error)
	Repaint(h Handle, rec Record) error
	Remove(h Handle) error
}

// Middleware wraps a Renderer with additional behavior.
type Middleware func(next Renderer) Renderer

// Chain wraps r with mws. The first middleware is the outermost.
func Chain(r Renderer, mws ...Middleware) Renderer {
	for i := len(mws) - 1; i >= 0; i-- {
		r = mws[i](r)
	}
	return r
}

// RendererFuncs builds a Renderer from individual functions.
// Nil functions are no-ops; a nil PaintFunc paints with the record key as
// the handle.
type RendererFuncs struct {
	PaintFunc   func(rec Record) (Handle, error)
	RepaintFunc func(h Handle, rec Record) error
	RemoveFunc  func(h Handle) error
}

// Paint calls PaintFunc.
func (f RendererFuncs) Paint(rec Record) (Handle, error) {
	if f.PaintFunc == nil {
		return Handle(rec.Key), nil
	}
	return f.PaintFunc(rec)
}

// Repaint calls RepaintFunc.
func (f RendererFuncs) Repaint(h Handle, rec Record) error {
	if f.RepaintFunc == nil {
		return nil
	}
	return f.RepaintFunc(h, rec)
}

// Remove calls RemoveFunc.
func (f RendererFuncs) Remove(h Handle) error {
	if f.RemoveFunc == nil {
		return nil
	}
	return f.RemoveFunc(h)
}
