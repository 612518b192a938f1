/*
Package cache stores the outcome of validated DNS responses.

Each owner name has a QueryTypesCache with one Slot per query type. A slot
is unknown, a positive record set, or a NODATA marker; every store replaces
it whole. Alongside the slots the cache keeps CNAME aliases, NXDOMAIN
markers scoped by the zone that proved them, and fixed entries from static
sources such as /etc/hosts.

# Expiry

CacheUntil is either UseOnce, for records that answer only the current
transaction (a zero TTL), or Cached until an absolute instant. Observing the
same record set twice merges the two with CacheUntil.Update. An
inconsistent merge never panics: the result is UseOnce, a warning is logged
and burrow_cache_invariant_violations_total is incremented.

# Lookup order

 1. Fixed entries. They never expire and win over anything cached for the
    same name. A fixed alias is followed for every type; fixed addresses
    answer A and AAAA lookups only.
 2. Cached aliases, followed up to name.MaximumChainLength hops.
 3. NXDOMAIN for the name or any ancestor (RFC 8020).
 4. The slot for the queried type.

# Records

Record sets are kept in containers that fix their order: by value for
unordered types (A, NS, TXT), by priority then value for MX and NAPTR, and
in priority groups for SRV and URI so MultiplePrioritizedThenWeightedRecords.Select
can draw the RFC 2782 weighted order reproducibly from a seed.

# Concurrency

A Cache is safe for concurrent use. Coalescer keeps concurrent lookups for
the same (name, type) down to one fetch.
*/
package cache
