/*
Package message validates a DNS response against the query it answers.

Parse runs one response through a fixed sequence of checks and stops at
the first failure with a typed error:

 1. Header: length plausible for the section counts, QR set, matching ID,
    opcode QUERY, Z clear, TC handled per transport, RD and CD echoed, AD
    only when requested.
 2. Question: exactly one, matching the query name (case-insensitively),
    type and class.
 3. Framing: every record is located and bounds checked; nothing may follow
    the last record.
 4. EDNS: at most one OPT, in the additional section, owned by the root.
    Its high response code bits are combined with the header's before the
    code is judged, so a reserved extended code is never mistaken for
    NOERROR.
 5. Duplicates: a (type, class, owner, data) tuple repeated within a section
    is rejected, comparing names decompressed and case-folded.
 6. Answer: CNAME records are assembled into a chain from the question
    name; records of the queried type must be owned by the most canonical
    name and are handed to the AnswerVisitor.
 7. Authority: SOA and NS owners must be the most canonical name or one
    of its ancestors.
 8. Additional: glue addresses for the authority name servers.

The Response classifies the outcome as answered, NXDOMAIN, NODATA or a
referral, with the RFC 2308 shape of negative responses.

Nothing is cached here. A Response borrows the message buffer; callers
promote names with ParsedName.ToCaseFolded before retaining them.
*/
package message
