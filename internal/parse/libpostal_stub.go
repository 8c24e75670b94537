//go:build !libpostal

package parse

// LibpostalAvailable reports whether this binary was built with libpostal.
const LibpostalAvailable = false

// NewLibpostal returns ErrLibpostalUnavailable.
func NewLibpostal() (ExternalAddressParser, error) {
	return nil, ErrLibpostalUnavailable
}
