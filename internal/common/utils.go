package common

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// FailureReason gives a short log-friendly label for a failed outbound call,
// judged from the transport error it wraps.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}

	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &dnsErr):
		return "unresolved"
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return "unreachable"
	default:
		return "other"
	}
}
