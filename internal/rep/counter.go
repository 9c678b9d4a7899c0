package rep

// Counter is a monotonic repetition counter.
type Counter struct {
	value int
}

// Inc adds one completed repetition.
func (c *Counter) Inc() {
	c.value++
}

// Value returns the number of completed repetitions.
func (c *Counter) Value() int {
	return c.value
}
