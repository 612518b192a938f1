package message

import (
	"fmt"
	"net/netip"

	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/cuemby/burrow/pkg/wire"
)

// Outcome is what a validated response established about the query
type Outcome uint8

const (
	// OutcomeAnswered means at least one record of the queried type was visited
	OutcomeAnswered Outcome = iota + 1
	// OutcomeNoDomain is NXDOMAIN for the most canonical name
	OutcomeNoDomain
	// OutcomeNoData means the name exists without records of the queried type
	OutcomeNoData
	// OutcomeReferral delegates the most canonical name to other name servers
	OutcomeReferral
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeNoDomain:
		return "no_domain"
	case OutcomeNoData:
		return "no_data"
	case OutcomeReferral:
		return "referral"
	}
	return fmt.Sprintf("outcome%d", uint8(o))
}

// NegativeResponseType is the RFC 2308 section 2 shape of the authority
// section of a negative response
type NegativeResponseType uint8

const (
	NegativeNone NegativeResponseType = iota
	// NegativeSOAAndNS carries the zone SOA and its name servers (type 1)
	NegativeSOAAndNS
	// NegativeSOAOnly carries only the zone SOA (type 2)
	NegativeSOAOnly
	// NegativeNoAuthority carries neither, so it must not be cached (type 3)
	NegativeNoAuthority
	// NegativeReferral carries only name servers (type 4)
	NegativeReferral
)

func (t NegativeResponseType) String() string {
	switch t {
	case NegativeNone:
		return "none"
	case NegativeSOAAndNS:
		return "soa_and_ns"
	case NegativeSOAOnly:
		return "soa_only"
	case NegativeNoAuthority:
		return "no_authority"
	case NegativeReferral:
		return "referral"
	}
	return fmt.Sprintf("negative%d", uint8(t))
}

// Authority is the SOA record from the authority section
type Authority struct {
	Zone   name.ParsedName
	TTL    wire.TimeToLiveInSeconds
	Record rdata.StartOfAuthority
}

// NegativeTimeToLive is how long a negative answer proven by this SOA may be cached
func (a *Authority) NegativeTimeToLive() wire.TimeToLiveInSeconds {
	return a.Record.NegativeTimeToLive(a.TTL)
}

// Glue is an address for a name server taken from the additional section
type Glue struct {
	Address netip.Addr
	TTL     wire.TimeToLiveInSeconds
}

// NameServer is one authority NS record with any glue
type NameServer struct {
	Name      name.ParsedName
	TTL       wire.TimeToLiveInSeconds
	Addresses []Glue
}

// Delegation is the set of authority NS records, all for one zone
type Delegation struct {
	Zone        name.ParsedName
	NameServers []NameServer
}

// Response is the result of validating one message. Names in it borrow the
// message buffer.
type Response struct {
	Header       Header
	Outcome      Outcome
	ResponseCode ResponseCode
	EDNS         EDNS
	Question     name.ParsedName

	// Chain runs from the question name to the most canonical name;
	// ChainTTLs holds the TTL of each link in order.
	Chain     *name.CanonicalNameChain
	ChainTTLs []wire.TimeToLiveInSeconds

	// Answers counts records handed to the visitor
	Answers int

	SOA          *Authority
	Delegation   *Delegation
	NegativeType NegativeResponseType

	// Ignored holds records skipped as unusable without failing the response
	Ignored []error
}

// CanonicalName is the most canonical name the question resolved to
func (r *Response) CanonicalName() name.ParsedName {
	return r.Chain.MostCanonicalName()
}
