package host

import "fmt"

// BadRequestError reports a request with an unrecognized kind. It can
// only come from constructing a Request by hand; the Evaluator methods
// never produce one.
type BadRequestError struct {
	Kind string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("unknown request kind %q", e.Kind)
}

func newBadRequestError(kind string) *BadRequestError {
	return &BadRequestError{Kind: kind}
}
