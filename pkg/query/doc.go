/*
Package query turns validated responses into cache entries.

A Processor exists per supported query type. It decodes each answer record
into an owned value, folds the record TTLs into one expiry, and on Finish
commits what the response proved:

  - every CNAME link of the chain, under its own TTL
  - the record set at the most canonical name for an answer
  - a NODATA marker for the type, or an NXDOMAIN marker for the name,
    expiring at the lesser of the SOA TTL and its MINIMUM field
  - the delegation name servers and their glue for a referral

Process parses and commits in one call; a message that fails validation
commits nothing. ForType returns the processor for a type with its record
type erased, for callers that only need a printable summary.
*/
package query
