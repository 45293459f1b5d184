package whitelist

import (
	"bytes"
	"errors"
	"net/netip"
	"testing"
)

func TestKeyFromAddr(t *testing.T) {
	cases := []struct {
		addr string
		size int
		want []byte
	}{
		{"10.0.0.7", 4, []byte{10, 0, 0, 7}},
		{"::ffff:10.0.0.7", 4, []byte{10, 0, 0, 7}},
		{"10.0.0.7", 16, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 10, 0, 0, 7}},
		{"::ffff:10.0.0.7", 16, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 10, 0, 0, 7}},
		{"fe80::1", 16, []byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}},
	}
	for _, tc := range cases {
		got, err := KeyFromAddr(netip.MustParseAddr(tc.addr), tc.size)
		if err != nil {
			t.Fatalf("%s/%d: %v", tc.addr, tc.size, err)
		}
		if !bytes.Equal(got, tc.want) {
			t.Fatalf("%s/%d = %v, want %v", tc.addr, tc.size, got, tc.want)
		}
	}
}

func TestKeyFromAddr_Rejects(t *testing.T) {
	if _, err := KeyFromAddr(netip.MustParseAddr("fe80::1"), 4); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("ipv6 in 4 bytes: err = %v", err)
	}
	if _, err := KeyFromAddr(netip.Addr{}, 16); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("zero addr: err = %v", err)
	}
	if _, err := KeyFromAddr(netip.MustParseAddr("10.0.0.1"), 8); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("size 8: err = %v", err)
	}
}

func TestKeyFromAddr_MatchesCacheKeySize(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	k, err := KeyFromAddr(netip.MustParseAddr("192.168.1.20"), c.KeySize())
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if err := c.Add(k); err != nil {
		t.Fatalf("add: %v", err)
	}
	if ok, _ := c.Check(k); !ok {
		t.Fatalf("expected address to be allowed")
	}
}

func TestKeyFromAddr_IPv4DoesNotAdmitIPv6(t *testing.T) {
	c := New(Config{KeySize: 16})
	defer c.Close()

	v4, err := KeyFromAddr(netip.MustParseAddr("10.0.0.7"), 16)
	if err != nil {
		t.Fatalf("v4 key: %v", err)
	}
	v6, err := KeyFromAddr(netip.MustParseAddr("a00:7::"), 16)
	if err != nil {
		t.Fatalf("v6 key: %v", err)
	}
	if bytes.Equal(v4, v6) {
		t.Fatalf("distinct addresses share key %v", v4)
	}

	if err := c.Add(v4); err != nil {
		t.Fatalf("add: %v", err)
	}
	if ok, _ := c.Check(v6); ok {
		t.Fatalf("expected a00:7:: not to be allowed after admitting 10.0.0.7")
	}
	if ok, _ := c.Check(v4); !ok {
		t.Fatalf("expected 10.0.0.7 to be allowed")
	}
}
