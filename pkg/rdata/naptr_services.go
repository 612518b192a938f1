package rdata

import (
	"strconv"
	"strings"
	"sync"
)

// Application identifies the registry a NAPTR service tag belongs to
type Application string

const (
	ApplicationSIP      Application = "SIP"      // RFC 3263, RFC 7118
	ApplicationENUM     Application = "ENUM"     // RFC 6116 enumservices
	ApplicationALTO     Application = "ALTO"     // RFC 7286
	ApplicationTURN     Application = "TURN"     // RFC 5928, RFC 7350
	ApplicationHELD     Application = "HELD"     // RFC 5986 location information server
	ApplicationRADIUS   Application = "RADIUS"   // RFC 7585
	ApplicationDiameter Application = "Diameter" // RFC 3588, RFC 6408
	ApplicationIRIS     Application = "IRIS"     // RFC 3982, RFC 4414, RFC 4698, RFC 5144
	ApplicationXCON     Application = "XCON"     // RFC 6503 centralized conferencing (ConferenceXchange)
)

// ServiceField is a recognized NAPTR services value
type ServiceField struct {
	// Tag is the registered value, lower-cased
	Tag         string
	Application Application
	// Service is the application service, e.g. "e2u+email" or "aaa+auth"
	Service string
	// Protocol is the transport or URI scheme, e.g. "udp", "mailto" or "radius.tls.tcp"
	Protocol string
}

// IsEmpty reports whether the services field was empty
func (s ServiceField) IsEmpty() bool {
	return s.Tag == ""
}

// registeredServiceFields lists every recognized services value
func registeredServiceFields() []ServiceField {
	var fields []ServiceField
	add := func(app Application, service, protocol, tag string) {
		fields = append(fields, ServiceField{Tag: tag, Application: app, Service: service, Protocol: protocol})
	}

	for _, sip := range []struct{ service, resolution, protocol string }{
		{"sip", "d2u", "udp"},
		{"sip", "d2t", "tcp"},
		{"sips", "d2t", "tcp"},
		{"sip", "d2s", "sctp"},
		{"sips", "d2s", "sctp"},
		{"sip", "d2w", "ws"},
		{"sips", "d2w", "wss"},
	} {
		add(ApplicationSIP, sip.service, sip.protocol, sip.service+"+"+sip.resolution)
	}

	for _, enum := range []string{
		"sip", "h323", "iax", "im", "pres", "xmpp", "vcard",
		"email:mailto", "ems:mailto", "ems:tel", "fax:tel", "ifax:mailto",
		"mms:mailto", "mms:tel", "sms:mailto", "sms:tel",
		"ft:ftp", "web:http", "web:https", "info:http", "info:https",
		"voice:tel", "pstn:tel", "pstn:sip",
		"vpim:mailto", "vpim:ldap",
		"unifmsg:sip", "unifmsg:sips", "unifmsg:http", "unifmsg:https",
		"voicemsg:sip", "voicemsg:sips", "voicemsg:http", "voicemsg:https", "voicemsg:tel",
		"videomsg:sip", "videomsg:sips", "videomsg:http", "videomsg:https",
		"ical-sched:mailto", "ical-access:http", "ical-access:https",
	} {
		service, protocol, _ := strings.Cut(enum, ":")
		add(ApplicationENUM, "e2u+"+service, protocol, "e2u+"+enum)
	}

	for _, protocol := range []string{"http", "https"} {
		add(ApplicationALTO, "alto", protocol, "alto:"+protocol)
	}

	for _, protocol := range []string{"turn.udp", "turn.tcp", "turn.tls", "turn.dtls"} {
		add(ApplicationTURN, "relay", protocol, "relay:"+protocol)
	}

	add(ApplicationHELD, "lis", "held", "lis:held")

	// RFC 6503 section 12.4: conference server discovery over CCMP.
	add(ApplicationXCON, "xcon", "ccmp", "xcon:ccmp")

	for _, service := range []string{"aaa+auth", "aaa+acct", "aaa+dynauth"} {
		for _, protocol := range []string{"radius.tls.tcp", "radius.dtls.udp"} {
			add(ApplicationRADIUS, service, protocol, service+":"+protocol)
		}
	}

	// RFC 3588 section 11.6 resolution tags predate S-NAPTR.
	for _, legacy := range []struct{ tag, protocol string }{
		{"aaa+d2t", "tcp"},
		{"aaa+d2s", "sctp"},
		{"aaas+d2t", "tls.tcp"},
		{"aaas+d2s", "tls.sctp"},
	} {
		add(ApplicationDiameter, strings.SplitN(legacy.tag, "+", 2)[0], legacy.protocol, legacy.tag)
	}
	// Application ids registered for S-NAPTR by RFC 6408; 4294967295 is relay.
	for _, id := range []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 4294967295} {
		service := "aaa+ap" + strconv.FormatUint(uint64(id), 10)
		for _, protocol := range []string{"diameter.tcp", "diameter.sctp", "diameter.dtls.sctp", "diameter.tls.tcp"} {
			add(ApplicationDiameter, service, protocol, service+":"+protocol)
		}
	}

	for _, service := range []string{"dchk1", "dreg1", "areg1", "ereg1"} {
		for _, protocol := range []string{"iris.beep", "iris.lwz", "iris.xpc", "iris.xpcs"} {
			add(ApplicationIRIS, service, protocol, service+":"+protocol)
		}
	}

	return fields
}

type serviceTrie struct {
	children map[byte]*serviceTrie
	field    *ServiceField
}

func (t *serviceTrie) insert(field ServiceField) {
	node := t
	for i := 0; i < len(field.Tag); i++ {
		if node.children == nil {
			node.children = make(map[byte]*serviceTrie)
		}
		child, ok := node.children[field.Tag[i]]
		if !ok {
			child = &serviceTrie{}
			node.children[field.Tag[i]] = child
		}
		node = child
	}
	f := field
	node.field = &f
}

func (t *serviceTrie) lookup(raw []byte) (ServiceField, bool) {
	node := t
	for _, c := range raw {
		child, ok := node.children[foldLower(c)]
		if !ok {
			return ServiceField{}, false
		}
		node = child
	}
	if node.field == nil {
		return ServiceField{}, false
	}
	return *node.field, true
}

var (
	servicesOnce sync.Once
	services     *serviceTrie
)

func serviceIndex() *serviceTrie {
	servicesOnce.Do(func() {
		services = &serviceTrie{}
		for _, field := range registeredServiceFields() {
			services.insert(field)
		}
	})
	return services
}

func foldLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func wellFormedServiceField(raw []byte) bool {
	for i, c := range raw {
		c = foldLower(c)
		switch {
		case 'a' <= c && c <= 'z':
		case '0' <= c && c <= '9', c == '+', c == ':', c == '.', c == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ParseServiceField matches a NAPTR services value case-insensitively
// against the registered tags. An empty value is valid and yields the
// empty ServiceField.
func ParseServiceField(raw []byte) (ServiceField, error) {
	if len(raw) == 0 {
		return ServiceField{}, nil
	}
	if field, ok := serviceIndex().lookup(raw); ok {
		return field, nil
	}
	reason := IgnoredUnrecognizedServiceField
	if !wellFormedServiceField(raw) {
		reason = IgnoredMalformedServiceField
	}
	return ServiceField{}, &IgnoredError{Type: TypeNAPTR, Reason: reason, Detail: string(raw)}
}
