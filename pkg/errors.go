package pkg

import (
	"errors"
	"fmt"
)

var (
	ErrNoChannels       = errors.New("no channels configured")
	ErrAllChannelsBad   = errors.New("all channels are bad")
	ErrEmptyCatalog     = errors.New("channel catalog is empty after reload")
	ErrNoUsableChannels = errors.New("no channel could be resolved")
	ErrStopped          = errors.New("module stopped")
	ErrNotStarted       = errors.New("module not started")
)

const (
	ExitOK         = 0
	ExitNoChannels = 2
	ExitFailure    = 8
	ExitAllBad     = 42
)

// ExitCode maps the error the module finished with to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrStopped):
		return ExitOK
	case errors.Is(err, ErrAllChannelsBad):
		return ExitAllBad
	case errors.Is(err, ErrNoChannels):
		return ExitNoChannels
	}
	return ExitFailure
}

// requestError is a failed exchange with a node. connect is set when the node could not be reached at all.
type requestError struct {
	node    string
	connect bool
	err     error
}

func (e *requestError) Error() string {
	if e.connect {
		return fmt.Sprintf("connect %s: %v", e.node, e.err)
	}
	return fmt.Sprintf("request %s: %v", e.node, e.err)
}

func (e *requestError) Unwrap() error {
	return e.err
}

func isRequestError(err error) bool {
	var reqErr *requestError
	return errors.As(err, &reqErr)
}
