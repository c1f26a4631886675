package model

// Result is the outcome of a validated cart mutation. Rejections leave the
// cart untouched; callers decide whether to surface them.
type Result int

const (
	Accepted Result = iota
	Rejected
	NotFound
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Ok reports whether the mutation was applied.
func (r Result) Ok() bool {
	return r == Accepted
}
