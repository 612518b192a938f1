package message

import (
	"fmt"
	"strings"

	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
)

// Transport is how the query was sent, which decides truncation handling
type Transport uint8

const (
	TransportUDP Transport = iota
	TransportTCP
)

func (t Transport) String() string {
	if t == TransportTCP {
		return "tcp"
	}
	return "udp"
}

// ParseTransport accepts "udp" or "tcp"
func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(s) {
	case "udp", "":
		return TransportUDP, nil
	case "tcp":
		return TransportTCP, nil
	}
	return 0, fmt.Errorf("unknown transport: %s", s)
}

// Query is the outgoing query a response is correlated against
type Query struct {
	ID               uint16
	Name             name.CaseFoldedName
	Type             rdata.DataType
	Class            uint16
	RecursionDesired bool
	CheckingDisabled bool
	AuthenticData    bool
	DNSSECOK         bool
	Transport        Transport
}

// NewQuery returns a recursive IN-class query sent over UDP
func NewQuery(id uint16, n name.CaseFoldedName, t rdata.DataType) Query {
	return Query{
		ID:               id,
		Name:             n,
		Type:             t,
		Class:            rdata.ClassINET,
		RecursionDesired: true,
		Transport:        TransportUDP,
	}
}
