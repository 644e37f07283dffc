package cart

// Item is one cart line, a bare course reference. Pricing is resolved
// at checkout, never stored in the cart.
type Item struct {
	CourseID string `json:"courseId"`
}

// Cart is the per-session shopping cart: an ordered sequence of items
// unique by course. The zero value is an empty, usable cart. None of
// its operations can fail.
type Cart struct {
	items []Item
}

// Add appends a new item unless the course is already in the cart, in
// which case it is a no-op.
func (c *Cart) Add(courseID string) {
	for _, it := range c.items {
		if it.CourseID == courseID {
			return
		}
	}
	c.items = append(c.items, Item{CourseID: courseID})
}

// Remove drops the item for the course if present.
func (c *Cart) Remove(courseID string) {
	for i, it := range c.items {
		if it.CourseID == courseID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a snapshot of the cart in insertion order; mutating
// it does not touch the cart.
func (c *Cart) Items() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) Len() int { return len(c.items) }
