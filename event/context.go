package event

// Context is passed to handlers before a state changing action. A handler cancels the action by calling
// Cancel.
type Context struct {
	cancelled bool
}

// NewContext ...
func NewContext() *Context {
	return &Context{}
}

// Cancel ...
func (c *Context) Cancel() {
	c.cancelled = true
}

// Cancelled ...
func (c *Context) Cancelled() bool {
	return c.cancelled
}
