package rdata

import (
	"net/netip"
)

// DecodeA decodes an IPv4 address; the data must be exactly 4 bytes
func DecodeA(rd ResourceData) (netip.Addr, error) {
	if rd.Length != 4 {
		return netip.Addr{}, &LengthError{Type: TypeA, Length: rd.Length, Want: "exactly 4"}
	}
	return netip.AddrFrom4([4]byte(rd.Bytes())), nil
}

// DecodeAAAA decodes an IPv6 address; the data must be exactly 16 bytes
func DecodeAAAA(rd ResourceData) (netip.Addr, error) {
	if rd.Length != 16 {
		return netip.Addr{}, &LengthError{Type: TypeAAAA, Length: rd.Length, Want: "exactly 16"}
	}
	return netip.AddrFrom16([16]byte(rd.Bytes())), nil
}
