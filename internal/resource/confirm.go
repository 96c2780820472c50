package resource

// DeleteConfirmation tracks the two-step delete. Open and TargetID are set and
// cleared together.
type DeleteConfirmation struct {
	TargetID string
	Open     bool
}

func (c *DeleteConfirmation) open(id string) {
	c.TargetID = id
	c.Open = true
}

func (c *DeleteConfirmation) close() {
	c.TargetID = ""
	c.Open = false
}
