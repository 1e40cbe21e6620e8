package libdiff

// Reverse returns the changes leading from the target of changes back to
// its source.
func Reverse(changes []Change) []Change {
	res := make([]Change, len(changes))
	for i, c := range changes {
		switch c.Op {
		case Delete:
			c.Op = Insert
		case Insert:
			c.Op = Delete
		}
		c.From, c.To = c.To, c.From
		res[i] = c
	}
	return res
}
