package message

import (
	"fmt"

	"github.com/miekg/dns"
)

// ResponseCode is the full 12-bit extended response code (RFC 6891 section 6.1.3)
type ResponseCode uint16

const (
	RcodeNoError   ResponseCode = 0
	RcodeFormErr   ResponseCode = 1
	RcodeServFail  ResponseCode = 2
	RcodeNXDomain  ResponseCode = 3
	RcodeNotImp    ResponseCode = 4
	RcodeRefused   ResponseCode = 5
	RcodeYXDomain  ResponseCode = 6
	RcodeYXRRSet   ResponseCode = 7
	RcodeNXRRSet   ResponseCode = 8
	RcodeNotAuth   ResponseCode = 9
	RcodeNotZone   ResponseCode = 10
	RcodeDSOTypeNI ResponseCode = 11
	RcodeBadVers   ResponseCode = 16
	RcodeBadKey    ResponseCode = 17
	RcodeBadTime   ResponseCode = 18
	RcodeBadMode   ResponseCode = 19
	RcodeBadName   ResponseCode = 20
	RcodeBadAlg    ResponseCode = 21
	RcodeBadTrunc  ResponseCode = 22
	RcodeBadCookie ResponseCode = 23

	// 3841-4095 are reserved for private use (RFC 6895 section 2.3)
	firstPrivateResponseCode ResponseCode = 3841
)

func (c ResponseCode) String() string {
	if c == RcodeBadVers {
		// 16 is both BADVERS and BADSIG; only BADVERS can answer a query.
		return "BADVERS"
	}
	if s, ok := dns.RcodeToString[int(c)]; ok {
		return s
	}
	return fmt.Sprintf("RCODE%d", uint16(c))
}

func combineResponseCode(low uint8, edns EDNS) ResponseCode {
	return ResponseCode(edns.ExtendedResponseCode)<<4 | ResponseCode(low&0xf)
}

// classify decides whether a response with this code can carry an outcome.
// Only NOERROR and NXDOMAIN can.
func (c ResponseCode) classify() error {
	switch {
	case c == RcodeNoError, c == RcodeNXDomain:
		return nil
	case c == RcodeFormErr, c == RcodeServFail, c == RcodeNotImp, c == RcodeRefused,
		c == RcodeBadVers, c == RcodeBadCookie:
		return &ResponseCodeError{Code: c, Err: ErrServerResponseCode}
	case c >= RcodeYXDomain && c <= RcodeDSOTypeNI, c >= RcodeBadKey && c <= RcodeBadTrunc:
		// Assigned to UPDATE, DSO and TSIG/TKEY, never to a plain query.
		return &ResponseCodeError{Code: c, Err: ErrInvalidResponseCode}
	case c >= firstPrivateResponseCode:
		return &ResponseCodeError{Code: c, Err: ErrReservedResponseCode}
	}
	return &ResponseCodeError{Code: c, Err: ErrUnassignedResponseCode}
}
