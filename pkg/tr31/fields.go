package tr31

import (
	"fmt"
	"slices"
)

// VersionID identifies the key block binding method.
type VersionID string

const (
	VersionA VersionID = "A"
	VersionB VersionID = "B"
	VersionC VersionID = "C"
	VersionD VersionID = "D"
)

// Valid reports whether v is a known version ID.
func (v VersionID) Valid() bool {
	switch v {
	case VersionA, VersionB, VersionC, VersionD:
		return true
	default:
		return false
	}
}

// Description returns a human readable meaning of v.
func (v VersionID) Description() string {
	switch v {
	case VersionA:
		return "Key Variant Binding Method (deprecated)"
	case VersionB:
		return "TDEA Key Derivation Binding Method"
	case VersionC:
		return "TDEA Key Variant Binding Method"
	case VersionD:
		return "AES Key Derivation Binding Method"
	default:
		return "Unknown version"
	}
}

// KeyUsage is the two character intended function of the wrapped key.
type KeyUsage string

var keyUsages = map[KeyUsage]string{
	"B0": "BDK Base Derivation Key",
	"B1": "Initial DUKPT Key",
	"B2": "Base Key Variant Key",
	"C0": "CVK Card Verification Key",
	"D0": "Symmetric Key for Data Encryption",
	"D1": "Asymmetric Key for Data Encryption",
	"D2": "Data Encryption Key for Decimalization Table",
	"E0": "EMV/chip Issuer Master Key: Application Cryptograms",
	"E1": "EMV/chip Issuer Master Key: Secure Messaging for Confidentiality",
	"E2": "EMV/chip Issuer Master Key: Secure Messaging for Integrity",
	"E3": "EMV/chip Issuer Master Key: Data Authentication Code",
	"E4": "EMV/chip Issuer Master Key: Dynamic Numbers",
	"E5": "EMV/chip Issuer Master Key: Card Personalization",
	"E6": "EMV/chip Issuer Master Key: Other",
	"K0": "Key Encryption or Wrapping",
	"K1": "TR-31 Key Block Protection Key",
	"K2": "TR-34 Asymmetric Key",
	"K3": "Asymmetric Key for Key Agreement/Key Wrapping",
	"M0": "ISO 16609 MAC algorithm 1 (using TDEA)",
	"M1": "ISO 9797-1 MAC Algorithm 1",
	"M2": "ISO 9797-1 MAC Algorithm 2",
	"M3": "ISO 9797-1 MAC Algorithm 3",
	"M4": "ISO 9797-1 MAC Algorithm 4",
	"M5": "ISO 9797-1:1999 MAC Algorithm 5",
	"M6": "ISO 9797-1:2011 MAC Algorithm 5/CMAC",
	"M7": "HMAC",
	"M8": "ISO 9797-1:2011 MAC Algorithm 6",
	"P0": "PIN Encryption",
	"S0": "Asymmetric Key Pair for Digital Signature",
}

// Valid reports whether u is a known key usage.
func (u KeyUsage) Valid() bool {
	_, ok := keyUsages[u]

	return ok
}

// KeyUsages returns every known key usage in ascending order.
func KeyUsages() []KeyUsage {
	return sortedKeys(keyUsages)
}

// Description returns a human readable meaning of u.
func (u KeyUsage) Description() string {
	if m, ok := keyUsages[u]; ok {
		return m
	}

	return "Unknown key usage"
}

// Algorithm is the algorithm the wrapped key is used with.
type Algorithm string

const (
	AlgorithmAES  Algorithm = "A"
	AlgorithmDEA  Algorithm = "D"
	AlgorithmEC   Algorithm = "E"
	AlgorithmHMAC Algorithm = "H"
	AlgorithmRSA  Algorithm = "R"
	AlgorithmDSA  Algorithm = "S"
	AlgorithmTDEA Algorithm = "T"
)

// Algorithms returns every known algorithm in ascending order.
func Algorithms() []Algorithm {
	return []Algorithm{
		AlgorithmAES, AlgorithmDEA, AlgorithmEC, AlgorithmHMAC,
		AlgorithmRSA, AlgorithmDSA, AlgorithmTDEA,
	}
}

// Valid reports whether a is a known algorithm.
func (a Algorithm) Valid() bool {
	return a.Description() != "Unknown algorithm"
}

// Description returns a human readable meaning of a.
func (a Algorithm) Description() string {
	switch a {
	case AlgorithmAES:
		return "AES"
	case AlgorithmDEA:
		return "DEA"
	case AlgorithmEC:
		return "Elliptic Curve"
	case AlgorithmHMAC:
		return "HMAC"
	case AlgorithmRSA:
		return "RSA"
	case AlgorithmDSA:
		return "DSA"
	case AlgorithmTDEA:
		return "Triple DEA"
	default:
		return "Unknown algorithm"
	}
}

// ModeOfUse restricts the operations the wrapped key may perform.
type ModeOfUse string

var modesOfUse = map[ModeOfUse]string{
	"B": "Both encrypt and decrypt / wrap and unwrap",
	"C": "Both generate and verify",
	"D": "Decrypt / unwrap only",
	"E": "Encrypt / wrap only",
	"G": "Generate only",
	"N": "No special restrictions",
	"S": "Signature only",
	"T": "Both sign and decrypt",
	"V": "Verify only",
	"X": "Key used to derive other keys",
	"Y": "Key used to create key variants",
}

// Valid reports whether m is a known mode of use.
func (m ModeOfUse) Valid() bool {
	_, ok := modesOfUse[m]

	return ok
}

// ModesOfUse returns every known mode of use in ascending order.
func ModesOfUse() []ModeOfUse {
	return sortedKeys(modesOfUse)
}

// Description returns a human readable meaning of m.
func (m ModeOfUse) Description() string {
	if d, ok := modesOfUse[m]; ok {
		return d
	}

	return "Unknown mode of use"
}

// Exportability controls whether the wrapped key may leave its environment.
type Exportability string

const (
	ExportTrusted   Exportability = "E"
	ExportNone      Exportability = "N"
	ExportSensitive Exportability = "S"
)

// Exportabilities returns every known exportability value in ascending order.
func Exportabilities() []Exportability {
	return []Exportability{ExportTrusted, ExportNone, ExportSensitive}
}

// Valid reports whether e is a known exportability value.
func (e Exportability) Valid() bool {
	switch e {
	case ExportTrusted, ExportNone, ExportSensitive:
		return true
	default:
		return false
	}
}

// Description returns a human readable meaning of e.
func (e Exportability) Description() string {
	switch e {
	case ExportTrusted:
		return "Exportable under a trusted key"
	case ExportNone:
		return "Non-exportable"
	case ExportSensitive:
		return "Sensitive, exportable under an untrusted key"
	default:
		return "Unknown exportability"
	}
}

// OptBlockID identifies the content of an optional header block.
type OptBlockID string

const (
	OptBlockCT OptBlockID = "CT"
	OptBlockHM OptBlockID = "HM"
	OptBlockIK OptBlockID = "IK"
	OptBlockKC OptBlockID = "KC"
	OptBlockKP OptBlockID = "KP"
	OptBlockKS OptBlockID = "KS"
	OptBlockKV OptBlockID = "KV"
	OptBlockPB OptBlockID = "PB"
	OptBlockTS OptBlockID = "TS"
)

var optBlockIDs = map[OptBlockID]string{
	OptBlockCT: "Asymmetric key life cycle (certificate)",
	OptBlockHM: "HMAC hash algorithm",
	OptBlockIK: "Initial Key Identifier (AES DUKPT)",
	OptBlockKC: "Key Check Value of wrapped key",
	OptBlockKP: "Key Check Value of KBPK",
	OptBlockKS: "Key Set Identifier (TDEA DUKPT)",
	OptBlockKV: "Key block values",
	OptBlockPB: "Padding block",
	OptBlockTS: "Time stamp",
}

// Valid reports whether id is a known optional block ID.
func (id OptBlockID) Valid() bool {
	_, ok := optBlockIDs[id]

	return ok
}

// Description returns a human readable meaning of id.
func (id OptBlockID) Description() string {
	if d, ok := optBlockIDs[id]; ok {
		return d
	}

	return "Unknown optional block"
}

// KeyVersionDescription explains a two character key version number field.
func KeyVersionDescription(kvn string) string {
	switch {
	case kvn == "00":
		return "Key versioning not used"
	case len(kvn) == 2 && kvn[0] == 'c':
		return fmt.Sprintf("Key component %c", kvn[1])
	default:
		return fmt.Sprintf("Version %s", kvn)
	}
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)

	return out
}
