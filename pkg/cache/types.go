package cache

import (
	"cmp"
	"net/netip"
	"slices"
	"strings"

	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/cuemby/burrow/pkg/wire"
)

// Owned forms of decoded records. Nothing here references a message buffer.

// MailServer is an owned MX record
type MailServer struct {
	Preference uint16
	Exchange   name.CaseFoldedName
}

// ServiceLocation is an owned SRV record
type ServiceLocation struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   name.CaseFoldedName
}

// ResourceIdentifier is an owned URI record
type ResourceIdentifier struct {
	Priority uint16
	Weight   uint16
	Target   string
}

// NamingAuthority is an owned NAPTR record
type NamingAuthority struct {
	Order       uint16
	Preference  uint16
	Flag        rdata.NAPTRFlag
	Service     rdata.ServiceField
	Regexp      string
	Replacement name.CaseFoldedName
}

// Text is one owned TXT record
type Text []string

// StartOfAuthority is an owned SOA record
type StartOfAuthority struct {
	PrimaryNameServer  name.CaseFoldedName
	ResponsibleMailbox name.CaseFoldedName
	Serial             uint32
	Refresh            wire.TimeToLiveInSeconds
	Retry              wire.TimeToLiveInSeconds
	Expire             wire.TimeToLiveInSeconds
	Minimum            wire.TimeToLiveInSeconds
}

func CompareAddresses(a, b netip.Addr) int { return a.Compare(b) }

func CompareNames(a, b name.CaseFoldedName) int { return a.Compare(b) }

func CompareMailServers(a, b MailServer) int {
	return a.Exchange.Compare(b.Exchange)
}

func MailServerPreference(m MailServer) uint16 { return m.Preference }

func CompareServiceLocations(a, b ServiceLocation) int {
	return cmp.Or(
		cmp.Compare(a.Weight, b.Weight),
		cmp.Compare(a.Port, b.Port),
		a.Target.Compare(b.Target),
	)
}

func ServiceLocationPriority(s ServiceLocation) uint16 { return s.Priority }
func ServiceLocationWeight(s ServiceLocation) uint16   { return s.Weight }

func CompareResourceIdentifiers(a, b ResourceIdentifier) int {
	return cmp.Or(cmp.Compare(a.Weight, b.Weight), strings.Compare(a.Target, b.Target))
}

func ResourceIdentifierPriority(u ResourceIdentifier) uint16 { return u.Priority }
func ResourceIdentifierWeight(u ResourceIdentifier) uint16   { return u.Weight }

// CompareNamingAuthorities orders by preference within one order value
// (RFC 3403 section 4.1)
func CompareNamingAuthorities(a, b NamingAuthority) int {
	return cmp.Or(
		cmp.Compare(a.Preference, b.Preference),
		cmp.Compare(a.Service.Tag, b.Service.Tag),
		cmp.Compare(a.Flag, b.Flag),
		strings.Compare(a.Regexp, b.Regexp),
		a.Replacement.Compare(b.Replacement),
	)
}

func NamingAuthorityOrder(n NamingAuthority) uint16 { return n.Order }

func CompareTexts(a, b Text) int {
	return slices.Compare(a, b)
}
