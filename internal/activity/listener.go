package activity

// InputListener delivers keyboard/mouse events from the OS. Implementations
// run their own goroutine and invoke the callback for every event observed.
type InputListener interface {
	Start(onEvent func()) error
	Stop()
}

// NopListener is an InputListener that never fires. It is the portable
// fallback on platforms without a global input hook; with it, idleness is
// governed by lock state alone.
type NopListener struct{}

// Start implements InputListener.
func (NopListener) Start(func()) error { return nil }

// Stop implements InputListener.
func (NopListener) Stop() {}
