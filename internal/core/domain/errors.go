package domain

import "errors"

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrDataNotFound        = errors.New("required data not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrNotFound            = errors.New("record not found")
	ErrInvalidSample       = errors.New("invalid sample")
	ErrAlreadyStored       = errors.New("record already stored")
)

// ErrorKind names the error class for logs and metric labels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidSample):
		return "invalid_argument"
	case errors.Is(err, ErrDataNotFound):
		return "data_not_found"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "internal"
	}
}
