package message

import (
	"github.com/cuemby/burrow/pkg/rdata"
)

// The UDP payload size assumed when a response carries no OPT record
const DefaultUDPPayloadSize = 512

// EDNS is the decoded OPT pseudo-record (RFC 6891 section 6.1.3)
type EDNS struct {
	Present              bool
	UDPPayloadSize       uint16
	ExtendedResponseCode uint8
	Version              uint8
	DNSSECOK             bool
	// Options is the raw option data
	Options []byte
}

func parseOPT(rr ResourceRecord) EDNS {
	return EDNS{
		Present:              true,
		UDPPayloadSize:       max(rr.Class, DefaultUDPPayloadSize),
		ExtendedResponseCode: uint8(rr.RawTTL >> 24),
		Version:              uint8(rr.RawTTL >> 16),
		DNSSECOK:             rr.RawTTL&0x8000 != 0,
		Options:              rr.Data.Bytes(),
	}
}

// locateOPT scans every section for OPT records. Only one is allowed, in
// the additional section, owned by the root.
func locateOPT(records []ResourceRecord) (EDNS, error) {
	edns := EDNS{UDPPayloadSize: DefaultUDPPayloadSize}
	for _, rr := range records {
		if rr.Type != rdata.TypeOPT {
			continue
		}
		if rr.Section != SectionAdditional {
			return EDNS{}, recordError(rr, ErrOPTOutsideAdditional)
		}
		if edns.Present {
			return EDNS{}, recordError(rr, ErrMultipleOPT)
		}
		if !rr.Owner.IsRoot() {
			return EDNS{}, recordError(rr, ErrOPTOwnerNotRoot)
		}
		edns = parseOPT(rr)
	}
	return edns, nil
}
