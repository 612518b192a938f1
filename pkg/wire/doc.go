/*
Package wire decodes the fixed-width primitives of the DNS message format
(RFC 1035 section 3.2, RFC 2181 section 8).

Every reader takes the message slice and an offset and returns the value
together with the offset just past it. Nothing here panics on short input:
a read that would cross the end of the slice returns a *TruncatedError
naming what was being read.

	id, off, err := wire.ReadUint16(message, 0)
	ttl, off, err := wire.ReadTimeToLive(message, off)
	txt, err := wire.CharacterStrings(rdata)

Time-to-live values are 31-bit: a TTL with the top bit set is zero, never
a large number (RFC 2181 section 8). Absolute expiries are expressed as
NanosecondsSinceUnixEpoch.
*/
package wire
