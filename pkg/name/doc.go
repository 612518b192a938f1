/*
Package name models DNS domain names as they appear on the wire and as
they are used for cache keys.

Two representations exist:

  - ParsedName is a zero-copy view of a possibly compressed name inside a
    received message. It is only valid while the message buffer is alive.
  - CaseFoldedName is an owned, lower-cased, uncompressed name. It is
    comparable, so it is used directly as a map key by the cache.

A ParsedName is promoted with ToCaseFolded at the point a record is
committed to the cache; everything before that point compares names
without allocating.

# Limits

Names are at most 255 octets in uncompressed wire form (including the root
octet), carry at most 127 non-root labels and each label is at most 63
octets. Case folding lower-cases ASCII only.

# Compression

A label's leading octet selects its kind: 00 is a literal of 0 to 63
octets, 11 is a 14-bit pointer to an earlier offset in the message. 01 and
10 are rejected. A pointer must refer to an offset strictly before the
pointer itself and outside the 12-octet header, and the labels reached
through a pointer must end before that pointer. Every jump therefore moves
strictly backwards, so a cyclic message is rejected rather than looping.

# Canonical name chains

CanonicalNameChain records the CNAME redirections from a query name to its
most canonical name, at most MaximumChainLength links long.
*/
package name
