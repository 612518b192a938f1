package rdata

import "github.com/miekg/dns"

// DataType is a resource record type code
type DataType uint16

const (
	TypeA          DataType = 1
	TypeNS         DataType = 2
	TypeCNAME      DataType = 5
	TypeSOA        DataType = 6
	TypePTR        DataType = 12
	TypeHINFO      DataType = 13
	TypeMX         DataType = 15
	TypeTXT        DataType = 16
	TypeAAAA       DataType = 28
	TypeSRV        DataType = 33
	TypeNAPTR      DataType = 35
	TypeDNAME      DataType = 39
	TypeOPT        DataType = 41
	TypeDS         DataType = 43
	TypeRRSIG      DataType = 46
	TypeNSEC       DataType = 47
	TypeDNSKEY     DataType = 48
	TypeNSEC3      DataType = 50
	TypeNSEC3PARAM DataType = 51
	TypeCDS        DataType = 59
	TypeCDNSKEY    DataType = 60
	TypeTKEY       DataType = 249
	TypeTSIG       DataType = 250
	TypeIXFR       DataType = 251
	TypeAXFR       DataType = 252
	TypeMAILB      DataType = 253
	TypeMAILA      DataType = 254
	TypeANY        DataType = 255
	TypeURI        DataType = 256
	TypeCAA        DataType = 257
)

// ClassINET is the Internet class
const ClassINET uint16 = 1

// String returns the mnemonic, or TYPEnnn for unnamed codes
func (t DataType) String() string {
	return dns.Type(t).String()
}

// IsQueryOnly reports whether t may appear in a question but never as a
// resource record
func (t DataType) IsQueryOnly() bool {
	switch t {
	case TypeIXFR, TypeAXFR, TypeMAILB, TypeMAILA, TypeANY:
		return true
	}
	return false
}

// IsMeta reports whether t is a message-scoped pseudo record
func (t DataType) IsMeta() bool {
	switch t {
	case TypeOPT, TypeTKEY, TypeTSIG:
		return true
	}
	return false
}

// IsDNSSEC reports whether t carries DNSSEC proof material that this
// package does not validate
func (t DataType) IsDNSSEC() bool {
	switch t {
	case TypeRRSIG, TypeNSEC, TypeNSEC3, TypeNSEC3PARAM, TypeDS:
		return true
	}
	return false
}
