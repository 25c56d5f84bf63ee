package cli

import "errors"

// ErrUsage marks user-facing misuse (bad flags, bad config, bad input
// document) so main can exit with a distinct status code.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
