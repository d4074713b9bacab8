package webcrypto

import (
	"fmt"
	"strings"
)

// AlgorithmName identifies a WebCrypto algorithm.
type AlgorithmName string

// Supported algorithms
const (
	AlgorithmAESCTR         AlgorithmName = "AES-CTR"
	AlgorithmAESCBC         AlgorithmName = "AES-CBC"
	AlgorithmAESGCM         AlgorithmName = "AES-GCM"
	AlgorithmHMAC           AlgorithmName = "HMAC"
	AlgorithmRSASSAPKCS1v15 AlgorithmName = "RSASSA-PKCS1-v1_5"
	AlgorithmRSAPSS         AlgorithmName = "RSA-PSS"
	AlgorithmRSAOAEP        AlgorithmName = "RSA-OAEP"
	AlgorithmECDSA          AlgorithmName = "ECDSA"
	AlgorithmECDH           AlgorithmName = "ECDH"
	AlgorithmHKDF           AlgorithmName = "HKDF"
	AlgorithmPBKDF2         AlgorithmName = "PBKDF2"
)

// Algorithms lists every supported algorithm in a stable order.
var Algorithms = []AlgorithmName{
	AlgorithmAESCTR,
	AlgorithmAESCBC,
	AlgorithmAESGCM,
	AlgorithmHMAC,
	AlgorithmRSASSAPKCS1v15,
	AlgorithmRSAPSS,
	AlgorithmRSAOAEP,
	AlgorithmECDSA,
	AlgorithmECDH,
	AlgorithmHKDF,
	AlgorithmPBKDF2,
}

// NormalizeAlgorithm maps a case-insensitive algorithm name to its canonical form.
func NormalizeAlgorithm(name string) (AlgorithmName, error) {
	for _, alg := range Algorithms {
		if strings.EqualFold(string(alg), name) {
			return alg, nil
		}
	}
	return "", fmt.Errorf("%w: unrecognized algorithm name %q", ErrNotSupported, name)
}

// IsAES reports whether the algorithm is one of the AES modes.
func (a AlgorithmName) IsAES() bool {
	return a == AlgorithmAESCTR || a == AlgorithmAESCBC || a == AlgorithmAESGCM
}

// IsRSA reports whether the algorithm is one of the RSA schemes.
func (a AlgorithmName) IsRSA() bool {
	return a == AlgorithmRSASSAPKCS1v15 || a == AlgorithmRSAPSS || a == AlgorithmRSAOAEP
}

// IsEC reports whether the algorithm operates on elliptic curve keys.
func (a AlgorithmName) IsEC() bool {
	return a == AlgorithmECDSA || a == AlgorithmECDH
}

// IsKDF reports whether the algorithm is a key derivation function.
func (a AlgorithmName) IsKDF() bool {
	return a == AlgorithmHKDF || a == AlgorithmPBKDF2
}

// HashName identifies a digest algorithm.
type HashName string

// Supported digests
const (
	HashSHA1   HashName = "SHA-1"
	HashSHA256 HashName = "SHA-256"
	HashSHA384 HashName = "SHA-384"
	HashSHA512 HashName = "SHA-512"
)

// NormalizeHash accepts "sha256", "SHA-256", "Sha-256" and similar spellings.
func NormalizeHash(name string) (HashName, error) {
	switch strings.ToUpper(strings.ReplaceAll(name, "-", "")) {
	case "SHA1":
		return HashSHA1, nil
	case "SHA256":
		return HashSHA256, nil
	case "SHA384":
		return HashSHA384, nil
	case "SHA512":
		return HashSHA512, nil
	default:
		return "", fmt.Errorf("%w: unrecognized hash %q", ErrNotSupported, name)
	}
}

// BlockSizeBits returns the digest block size, which is also the default HMAC key length.
func (h HashName) BlockSizeBits() int {
	switch h {
	case HashSHA384, HashSHA512:
		return 1024
	default:
		return 512
	}
}

// NamedCurve identifies an elliptic curve.
type NamedCurve string

// Supported curves
const (
	CurveP256 NamedCurve = "P-256"
	CurveP384 NamedCurve = "P-384"
	CurveP521 NamedCurve = "P-521"
)

// ByteLen returns the size in bytes of a field element (and of each signature half).
func (c NamedCurve) ByteLen() int {
	switch c {
	case CurveP256:
		return 32
	case CurveP384:
		return 48
	case CurveP521:
		return 66
	default:
		return 0
	}
}

// NormalizeCurve accepts "P-521", "p521" and similar spellings.
func NormalizeCurve(name string) (NamedCurve, error) {
	switch strings.ToUpper(strings.ReplaceAll(name, "-", "")) {
	case "P256":
		return CurveP256, nil
	case "P384":
		return CurveP384, nil
	case "P521":
		return CurveP521, nil
	default:
		return "", fmt.Errorf("%w: unrecognized named curve %q", ErrNotSupported, name)
	}
}

// KeyFormat identifies an import/export encoding.
type KeyFormat string

// Supported key formats
const (
	KeyFormatRaw   KeyFormat = "raw"
	KeyFormatSPKI  KeyFormat = "spki"
	KeyFormatPKCS8 KeyFormat = "pkcs8"
	KeyFormatJWK   KeyFormat = "jwk"
)
