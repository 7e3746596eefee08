package smod

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/grid-x/modbus"
)

// IsNetworkError reports transport level failures (timeouts, refused or reset connections,
// unreachable hosts). Modbus exception responses are device answers, not network errors.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var mbErr *modbus.Error
	if errors.As(err, &mbErr) {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.EHOSTUNREACH, syscall.ENETUNREACH, syscall.EPIPE} {
		if errors.Is(err, errno) {
			return true
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// ExceptionCode returns the modbus exception code carried by err, if any.
func ExceptionCode(err error) (byte, bool) {
	var mbErr *modbus.Error
	if errors.As(err, &mbErr) {
		return mbErr.ExceptionCode, true
	}
	return 0, false
}
