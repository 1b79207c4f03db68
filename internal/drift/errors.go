package drift

import "fmt"

// InputError reports a missing or unusable image directory. It halts the
// pipeline before any statistical work and is distinct from a computed
// "no drift" result.
type InputError struct {
	Dir    string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input %s: %s: %v", e.Dir, e.Reason, e.Err)
	}
	return fmt.Sprintf("input %s: %s", e.Dir, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }
