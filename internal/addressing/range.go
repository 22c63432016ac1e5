package addressing

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strings"
)

// Range is an inclusive span of IPv4 addresses
type Range struct {
	First netip.Addr
	Last  netip.Addr
}

// ParseRange parses "a.b.c.d-a.b.c.e". A single address is a range of one.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	first, last, found := strings.Cut(s, "-")
	if !found {
		last = first
	}

	f, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return Range{}, fmt.Errorf("parse range %q: %w", s, err)
	}
	l, err := netip.ParseAddr(strings.TrimSpace(last))
	if err != nil {
		return Range{}, fmt.Errorf("parse range %q: %w", s, err)
	}

	r := Range{First: f, Last: l}
	if err := r.validate(); err != nil {
		return Range{}, fmt.Errorf("parse range %q: %w", s, err)
	}
	return r, nil
}

// MustParseRange is ParseRange that panics on error, for tables and tests
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Range) validate() error {
	if !r.First.Is4() || !r.Last.Is4() {
		return fmt.Errorf("range must be IPv4")
	}
	if r.Last.Less(r.First) {
		return fmt.Errorf("range end %s precedes start %s", r.Last, r.First)
	}
	return nil
}

// IsValid reports whether both ends are set
func (r Range) IsValid() bool {
	return r.First.IsValid() && r.Last.IsValid()
}

// Size returns the number of addresses in the range
func (r Range) Size() int {
	if !r.IsValid() {
		return 0
	}
	return int(toUint32(r.Last)-toUint32(r.First)) + 1
}

// Contains reports whether a falls inside the range
func (r Range) Contains(a netip.Addr) bool {
	if !r.IsValid() || !a.Is4() {
		return false
	}
	return !a.Less(r.First) && !r.Last.Less(a)
}

// Overlaps reports whether the two ranges share any address
func (r Range) Overlaps(o Range) bool {
	if !r.IsValid() || !o.IsValid() {
		return false
	}
	return !r.Last.Less(o.First) && !o.Last.Less(r.First)
}

// Within reports whether the whole range sits inside prefix
func (r Range) Within(prefix netip.Prefix) bool {
	return prefix.Contains(r.First) && prefix.Contains(r.Last)
}

// At returns the i-th address of the range (0-based)
func (r Range) At(i int) netip.Addr {
	return fromUint32(toUint32(r.First) + uint32(i))
}

func (r Range) String() string {
	if r.First == r.Last {
		return r.First.String()
	}
	return r.First.String() + "-" + r.Last.String()
}

func toUint32(a netip.Addr) uint32 {
	b := a.As4()
	return binary.BigEndian.Uint32(b[:])
}

func fromUint32(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}
