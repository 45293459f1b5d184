package whitelist

import (
	"fmt"
	"net/netip"
)

// KeyFromAddr encodes addr as a whitelist key of the given size.
//
// With size 4 only IPv4 (or IPv4-mapped IPv6) addresses fit. With size 16 an
// IPv4 address is stored in its ::ffff:a.b.c.d form, so it can never share a
// key with a native IPv6 address.
func KeyFromAddr(addr netip.Addr, size int) ([]byte, error) {
	if !addr.IsValid() {
		return nil, fmt.Errorf("%w: invalid address", ErrInvalidKey)
	}
	addr = addr.Unmap()

	switch size {
	case 4:
		if !addr.Is4() {
			return nil, fmt.Errorf("%w: %s does not fit in 4 bytes", ErrInvalidKey, addr)
		}
		b := addr.As4()
		return b[:], nil
	case 16:
		b := addr.As16()
		return b[:], nil
	default:
		return nil, fmt.Errorf("%w: unsupported key size %d", ErrInvalidKey, size)
	}
}
