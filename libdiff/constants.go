package libdiff

// Op is the kind of a change.
type Op int

const (
	Equal Op = iota
	Delete
	Insert
	Replace
)

func (o Op) String() string {
	switch o {
	case Delete:
		return "-"
	case Insert:
		return "+"
	case Replace:
		return "~"
	default:
		return " "
	}
}
