//go:build !windows

package winreg

import "context"

// OSReader is a stub on platforms without a registry. Every call fails
// with ErrUnsupported, which the engine treats as an ordinary probe
// failure.
type OSReader struct{}

// NewOSReader creates the stub registry reader
func NewOSReader() *OSReader {
	return &OSReader{}
}

// QueryValue always fails with ErrUnsupported
func (r *OSReader) QueryValue(_ context.Context, _, _ string) ([]Result, error) {
	return nil, ErrUnsupported
}

// EnumSubkeys always fails with ErrUnsupported
func (r *OSReader) EnumSubkeys(_ context.Context, _ string) ([]KeyRef, error) {
	return nil, ErrUnsupported
}

// ValueAt always fails with ErrUnsupported
func (r *OSReader) ValueAt(_ context.Context, _ Location, _, _ string) (string, error) {
	return "", ErrUnsupported
}
