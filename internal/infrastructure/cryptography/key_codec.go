package cryptography

import (
	"context"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"math/big"
	"slices"

	"github.com/r-lib/jose/internal/domain/webcrypto"
)

func (s *subtleCrypto) ImportKey(ctx context.Context, format webcrypto.KeyFormat, keyData []byte, algorithm webcrypto.Algorithm, extractable bool, usages []webcrypto.KeyUsage) (*webcrypto.CryptoKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}
	desc, err := importDescriptor(algorithm)
	if err != nil {
		return nil, err
	}

	switch format {
	case webcrypto.KeyFormatRaw:
		return s.importRaw(desc, keyData, algorithm, extractable, usages)
	case webcrypto.KeyFormatSPKI:
		return s.importSPKI(desc, keyData, extractable, usages)
	case webcrypto.KeyFormatPKCS8:
		return s.importPKCS8(desc, keyData, extractable, usages)
	case webcrypto.KeyFormatJWK:
		jwk, err := webcrypto.ParseJWK(keyData)
		if err != nil {
			return nil, err
		}
		return s.ImportJWK(ctx, jwk, algorithm, extractable, usages)
	default:
		return nil, fmt.Errorf("%w: key format %q", webcrypto.ErrNotSupported, format)
	}
}

func (s *subtleCrypto) importRaw(desc webcrypto.KeyAlgorithm, keyData []byte, algorithm webcrypto.Algorithm, extractable bool, usages []webcrypto.KeyUsage) (*webcrypto.CryptoKey, error) {
	switch {
	case desc.Name.IsAES():
		if err := checkAESKeySize(len(keyData)); err != nil {
			return nil, err
		}
		desc.Length = len(keyData) * 8
		return newImportedKey(desc, webcrypto.KeyTypeSecret, extractable, usages, slices.Clone(keyData))

	case desc.Name == webcrypto.AlgorithmHMAC:
		length, err := hmacImportLength(algorithm.(*webcrypto.HMACImportParams), len(keyData))
		if err != nil {
			return nil, err
		}
		desc.Length = length
		return newImportedKey(desc, webcrypto.KeyTypeSecret, extractable, usages, slices.Clone(keyData))

	case desc.Name.IsKDF():
		if extractable {
			return nil, fmt.Errorf("%w: %s keys cannot be extractable", webcrypto.ErrSyntax, desc.Name)
		}
		return newImportedKey(desc, webcrypto.KeyTypeSecret, false, usages, slices.Clone(keyData))

	case desc.Name.IsEC():
		material, err := ecPublicFromPoint(desc.Name, desc.NamedCurve, keyData)
		if err != nil {
			return nil, err
		}
		return newImportedKey(desc, webcrypto.KeyTypePublic, extractable, usages, material)

	default:
		return nil, fmt.Errorf("%w: raw import for %s", webcrypto.ErrNotSupported, desc.Name)
	}
}

func (s *subtleCrypto) importSPKI(desc webcrypto.KeyAlgorithm, keyData []byte, extractable bool, usages []webcrypto.KeyUsage) (*webcrypto.CryptoKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SPKI: %v", webcrypto.ErrData, err)
	}

	switch pub := parsed.(type) {
	case *rsa.PublicKey:
		if !desc.Name.IsRSA() {
			return nil, fmt.Errorf("%w: SPKI holds an RSA key, not %s", webcrypto.ErrData, desc.Name)
		}
		describeRSA(&desc, pub)
		return newImportedKey(desc, webcrypto.KeyTypePublic, extractable, usages, pub)

	case *ecdsa.PublicKey:
		if !desc.Name.IsEC() {
			return nil, fmt.Errorf("%w: SPKI holds an EC key, not %s", webcrypto.ErrData, desc.Name)
		}
		if err := checkCurve(pub.Curve, desc.NamedCurve); err != nil {
			return nil, err
		}
		if desc.Name == webcrypto.AlgorithmECDSA {
			return newImportedKey(desc, webcrypto.KeyTypePublic, extractable, usages, pub)
		}
		ecdhKey, err := pub.ECDH()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", webcrypto.ErrData, err)
		}
		return newImportedKey(desc, webcrypto.KeyTypePublic, extractable, usages, ecdhKey)

	default:
		return nil, fmt.Errorf("%w: SPKI key type %T", webcrypto.ErrNotSupported, parsed)
	}
}

func (s *subtleCrypto) importPKCS8(desc webcrypto.KeyAlgorithm, keyData []byte, extractable bool, usages []webcrypto.KeyUsage) (*webcrypto.CryptoKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid PKCS#8: %v", webcrypto.ErrData, err)
	}

	switch priv := parsed.(type) {
	case *rsa.PrivateKey:
		if !desc.Name.IsRSA() {
			return nil, fmt.Errorf("%w: PKCS#8 holds an RSA key, not %s", webcrypto.ErrData, desc.Name)
		}
		describeRSA(&desc, &priv.PublicKey)
		return newImportedKey(desc, webcrypto.KeyTypePrivate, extractable, usages, priv)

	case *ecdsa.PrivateKey:
		if !desc.Name.IsEC() {
			return nil, fmt.Errorf("%w: PKCS#8 holds an EC key, not %s", webcrypto.ErrData, desc.Name)
		}
		if err := checkCurve(priv.Curve, desc.NamedCurve); err != nil {
			return nil, err
		}
		if desc.Name == webcrypto.AlgorithmECDSA {
			return newImportedKey(desc, webcrypto.KeyTypePrivate, extractable, usages, priv)
		}
		ecdhKey, err := priv.ECDH()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", webcrypto.ErrData, err)
		}
		return newImportedKey(desc, webcrypto.KeyTypePrivate, extractable, usages, ecdhKey)

	default:
		return nil, fmt.Errorf("%w: PKCS#8 key type %T", webcrypto.ErrNotSupported, parsed)
	}
}

func (s *subtleCrypto) ExportKey(ctx context.Context, format webcrypto.KeyFormat, key *webcrypto.CryptoKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkExtractable(key); err != nil {
		return nil, err
	}

	switch format {
	case webcrypto.KeyFormatRaw:
		switch material := key.Material().(type) {
		case []byte:
			return slices.Clone(material), nil
		case *ecdsa.PublicKey:
			point, err := ecdsaPoint(material)
			if err != nil {
				return nil, err
			}
			return point, nil
		case *ecdh.PublicKey:
			return material.Bytes(), nil
		}

	case webcrypto.KeyFormatSPKI:
		if key.Type == webcrypto.KeyTypePublic {
			der, err := x509.MarshalPKIXPublicKey(key.Material())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", webcrypto.ErrOperation, err)
			}
			return der, nil
		}

	case webcrypto.KeyFormatPKCS8:
		if key.Type == webcrypto.KeyTypePrivate {
			der, err := x509.MarshalPKCS8PrivateKey(key.Material())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", webcrypto.ErrOperation, err)
			}
			return der, nil
		}

	case webcrypto.KeyFormatJWK:
		jwk, err := s.ExportJWK(ctx, key)
		if err != nil {
			return nil, err
		}
		return []byte(jwk.String()), nil

	default:
		return nil, fmt.Errorf("%w: key format %q", webcrypto.ErrNotSupported, format)
	}

	return nil, fmt.Errorf("%w: a %s %s key cannot be exported as %s", webcrypto.ErrInvalidAccess, key.Type, key.Algorithm.Name, format)
}

// importDescriptor derives the key algorithm descriptor from import params.
func importDescriptor(algorithm webcrypto.Algorithm) (webcrypto.KeyAlgorithm, error) {
	switch p := algorithm.(type) {
	case *webcrypto.AlgorithmIdentifier:
		if p.Name.IsAES() || p.Name.IsKDF() {
			return webcrypto.KeyAlgorithm{Name: p.Name}, nil
		}
	case *webcrypto.HMACImportParams:
		if p.Name == webcrypto.AlgorithmHMAC {
			if _, err := cryptoHash(p.Hash); err != nil {
				return webcrypto.KeyAlgorithm{}, err
			}
			return webcrypto.KeyAlgorithm{Name: p.Name, Hash: p.Hash}, nil
		}
	case *webcrypto.RSAHashedImportParams:
		if p.Name.IsRSA() {
			if _, err := cryptoHash(p.Hash); err != nil {
				return webcrypto.KeyAlgorithm{}, err
			}
			return webcrypto.KeyAlgorithm{Name: p.Name, Hash: p.Hash}, nil
		}
	case *webcrypto.ECKeyImportParams:
		if p.Name.IsEC() {
			if _, err := ecdhCurve(p.NamedCurve); err != nil {
				return webcrypto.KeyAlgorithm{}, err
			}
			return webcrypto.KeyAlgorithm{Name: p.Name, NamedCurve: p.NamedCurve}, nil
		}
	}
	return webcrypto.KeyAlgorithm{}, fmt.Errorf("%w: import parameters %T for %s", webcrypto.ErrNotSupported, algorithm, algorithm.AlgorithmName())
}

func newImportedKey(desc webcrypto.KeyAlgorithm, keyType webcrypto.KeyType, extractable bool, usages []webcrypto.KeyUsage, material any) (*webcrypto.CryptoKey, error) {
	keyUsages, err := importedUsages(desc.Name, keyType, usages)
	if err != nil {
		return nil, err
	}
	return webcrypto.NewCryptoKey(keyType, extractable, desc, keyUsages, material), nil
}

func checkExtractable(key *webcrypto.CryptoKey) error {
	if key == nil {
		return fmt.Errorf("%w: key cannot be nil", webcrypto.ErrInvalidAccess)
	}
	if !key.Extractable {
		return fmt.Errorf("%w: key is not extractable", webcrypto.ErrInvalidAccess)
	}
	return nil
}

func checkAESKeySize(size int) error {
	switch size {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("%w: AES key must be 128, 192 or 256 bits, got %d", webcrypto.ErrData, size*8)
	}
}

// hmacImportLength resolves the key length in bits. A requested length may
// trim at most the last byte of the key.
func hmacImportLength(p *webcrypto.HMACImportParams, size int) (int, error) {
	if size == 0 {
		return 0, fmt.Errorf("%w: HMAC key cannot be empty", webcrypto.ErrData)
	}
	if p.Length == 0 {
		return size * 8, nil
	}
	if p.Length > size*8 || p.Length <= (size-1)*8 {
		return 0, fmt.Errorf("%w: HMAC length %d does not match a %d-byte key", webcrypto.ErrData, p.Length, size)
	}
	return p.Length, nil
}

func describeRSA(desc *webcrypto.KeyAlgorithm, pub *rsa.PublicKey) {
	desc.ModulusLength = pub.N.BitLen()
	desc.PublicExponent = big.NewInt(int64(pub.E)).Bytes()
}

func checkCurve(curve elliptic.Curve, want webcrypto.NamedCurve) error {
	got, err := curveName(curve)
	if err != nil {
		return fmt.Errorf("%w: %v", webcrypto.ErrData, err)
	}
	if got != want {
		return fmt.Errorf("%w: key is on %s, not %s", webcrypto.ErrData, got, want)
	}
	return nil
}

// ecPublicFromPoint parses an uncompressed point into the key type used by
// the given algorithm.
func ecPublicFromPoint(name webcrypto.AlgorithmName, namedCurve webcrypto.NamedCurve, point []byte) (any, error) {
	curve, err := ecdhCurve(namedCurve)
	if err != nil {
		return nil, err
	}
	pub, err := curve.NewPublicKey(point)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s point: %v", webcrypto.ErrData, namedCurve, err)
	}
	if name == webcrypto.AlgorithmECDH {
		return pub, nil
	}
	return ecdsaPublicFromECDH(namedCurve, pub)
}

func ecdsaPublicFromECDH(namedCurve webcrypto.NamedCurve, pub *ecdh.PublicKey) (*ecdsa.PublicKey, error) {
	curve, err := ellipticCurve(namedCurve)
	if err != nil {
		return nil, err
	}
	point := pub.Bytes()
	size := namedCurve.ByteLen()
	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(point[1 : 1+size]),
		Y:     new(big.Int).SetBytes(point[1+size:]),
	}, nil
}

// ecdsaPoint encodes an ECDSA public key as an uncompressed point.
func ecdsaPoint(pub *ecdsa.PublicKey) ([]byte, error) {
	ecdhKey, err := pub.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", webcrypto.ErrOperation, err)
	}
	return ecdhKey.Bytes(), nil
}

// pointCoordinates splits an uncompressed point into its x and y halves.
func pointCoordinates(point []byte, size int) ([]byte, []byte, error) {
	if len(point) != 1+2*size || point[0] != 4 {
		return nil, nil, fmt.Errorf("%w: malformed uncompressed point", webcrypto.ErrOperation)
	}
	return point[1 : 1+size], point[1+size:], nil
}
