/*
Package rdata decodes the type-specific data of DNS resource records.

Each decoder is a pure function from a ResourceData (the record's bytes
located inside its message) to a typed value or a typed error. Decoders
never read outside the record data: a name inside the data may follow a
compression pointer back into the message, but its own octets must end
inside the record.

Decoders are isolated per type so a malformed record of one type never
affects parsing of another. A decoder that finds a structurally valid
record it cannot use (an unknown NAPTR flag or service tag, a deprecated
DNSSEC algorithm) returns an *IgnoredError; callers check IsIgnored and
skip the record instead of rejecting the message.

# Decoders

	DecodeA, DecodeAAAA        exactly 4 or 16 bytes
	DecodeNS, DecodeCNAME,
	DecodePTR, DecodeDNAME     one name, no trailing bytes
	DecodeSOA                  two names plus five 32-bit fields
	DecodeMX, DecodeSRV        priority fields plus a name
	DecodeTXT, DecodeHINFO     character-strings
	DecodeURI                  priority, weight and a non-empty target
	DecodeNAPTR                RFC 3403 with registered service fields
	DecodeDNSKEY, DecodeCDNSKEY,
	DecodeDS, DecodeCDS        DNSSEC key material with algorithm checks
	DecodeNSEC                 uncompressed next name plus type bitmap

# NAPTR service fields

Services values are matched case-insensitively against a trie built once,
on first use, from the registered tags of SIP, ENUM, ALTO, TURN, HELD,
RADIUS, Diameter and IRIS.
*/
package rdata
