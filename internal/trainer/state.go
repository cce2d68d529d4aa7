package trainer

import "fmt"

// State tracks a Trainer's lifecycle. A run moves from Uninitialized to
// Running on its first batch draw, then to Completed after the last step or
// to Failed on the first error. Neither end state can be left.
type State int

const (
	Uninitialized State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
