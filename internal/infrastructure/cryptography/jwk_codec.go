package cryptography

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/r-lib/jose/internal/domain/webcrypto"
)

var b64url = base64.RawURLEncoding

func (s *subtleCrypto) ExportJWK(ctx context.Context, key *webcrypto.CryptoKey) (*webcrypto.JWK, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkExtractable(key); err != nil {
		return nil, err
	}

	ext := key.Extractable
	jwk := &webcrypto.JWK{Ext: &ext, KeyOps: keyOps(key.Usages)}
	name := key.Algorithm.Name

	switch material := key.Material().(type) {
	case []byte:
		jwk.Kty = webcrypto.KtyOct
		jwk.K = b64url.EncodeToString(material)
		switch {
		case name.IsAES():
			jwk.Alg = aesJWKAlg(name, len(material)*8)
		case name == webcrypto.AlgorithmHMAC:
			jwk.Alg = hmacJWKAlg(key.Algorithm.Hash)
		default:
			return nil, fmt.Errorf("%w: JWK export for %s", webcrypto.ErrNotSupported, name)
		}

	case *rsa.PrivateKey:
		material.Precompute()
		jwk.Kty = webcrypto.KtyRSA
		jwk.Alg = rsaJWKAlg(name, key.Algorithm.Hash)
		setRSAPublic(jwk, &material.PublicKey)
		if len(material.Primes) != 2 {
			return nil, fmt.Errorf("%w: multi-prime RSA keys cannot be exported", webcrypto.ErrNotSupported)
		}
		jwk.D = encodeInt(material.D)
		jwk.P = encodeInt(material.Primes[0])
		jwk.Q = encodeInt(material.Primes[1])
		jwk.DP = encodeInt(material.Precomputed.Dp)
		jwk.DQ = encodeInt(material.Precomputed.Dq)
		jwk.QI = encodeInt(material.Precomputed.Qinv)

	case *rsa.PublicKey:
		jwk.Kty = webcrypto.KtyRSA
		jwk.Alg = rsaJWKAlg(name, key.Algorithm.Hash)
		setRSAPublic(jwk, material)

	case *ecdsa.PrivateKey:
		ecdhKey, err := material.ECDH()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", webcrypto.ErrOperation, err)
		}
		if err := setECPrivate(jwk, key.Algorithm.NamedCurve, ecdhKey); err != nil {
			return nil, err
		}

	case *ecdsa.PublicKey:
		point, err := ecdsaPoint(material)
		if err != nil {
			return nil, err
		}
		if err := setECPublic(jwk, key.Algorithm.NamedCurve, point); err != nil {
			return nil, err
		}

	case *ecdh.PrivateKey:
		if err := setECPrivate(jwk, key.Algorithm.NamedCurve, material); err != nil {
			return nil, err
		}

	case *ecdh.PublicKey:
		if err := setECPublic(jwk, key.Algorithm.NamedCurve, material.Bytes()); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: JWK export of %T", webcrypto.ErrNotSupported, material)
	}

	return jwk, nil
}

func (s *subtleCrypto) ImportJWK(ctx context.Context, jwk *webcrypto.JWK, algorithm webcrypto.Algorithm, extractable bool, usages []webcrypto.KeyUsage) (*webcrypto.CryptoKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}
	if jwk == nil {
		return nil, fmt.Errorf("%w: JWK cannot be nil", webcrypto.ErrData)
	}
	desc, err := importDescriptor(algorithm)
	if err != nil {
		return nil, err
	}
	if err := checkJWKMetadata(jwk, extractable, usages); err != nil {
		return nil, err
	}

	switch {
	case desc.Name.IsAES():
		raw, err := decodeOct(jwk)
		if err != nil {
			return nil, err
		}
		if err := checkAESKeySize(len(raw)); err != nil {
			return nil, err
		}
		if err := checkJWKAlg(jwk, aesJWKAlg(desc.Name, len(raw)*8)); err != nil {
			return nil, err
		}
		desc.Length = len(raw) * 8
		return newImportedKey(desc, webcrypto.KeyTypeSecret, extractable, usages, raw)

	case desc.Name == webcrypto.AlgorithmHMAC:
		raw, err := decodeOct(jwk)
		if err != nil {
			return nil, err
		}
		if err := checkJWKAlg(jwk, hmacJWKAlg(desc.Hash)); err != nil {
			return nil, err
		}
		length, err := hmacImportLength(algorithm.(*webcrypto.HMACImportParams), len(raw))
		if err != nil {
			return nil, err
		}
		desc.Length = length
		return newImportedKey(desc, webcrypto.KeyTypeSecret, extractable, usages, raw)

	case desc.Name.IsRSA():
		if jwk.Kty != webcrypto.KtyRSA {
			return nil, fmt.Errorf("%w: kty %q is not RSA", webcrypto.ErrData, jwk.Kty)
		}
		if err := checkJWKAlg(jwk, rsaJWKAlg(desc.Name, desc.Hash)); err != nil {
			return nil, err
		}
		pub, err := decodeRSAPublic(jwk)
		if err != nil {
			return nil, err
		}
		describeRSA(&desc, pub)
		if !jwk.IsPrivate() {
			return newImportedKey(desc, webcrypto.KeyTypePublic, extractable, usages, pub)
		}
		priv, err := decodeRSAPrivate(jwk, pub)
		if err != nil {
			return nil, err
		}
		return newImportedKey(desc, webcrypto.KeyTypePrivate, extractable, usages, priv)

	case desc.Name.IsEC():
		if jwk.Kty != webcrypto.KtyEC {
			return nil, fmt.Errorf("%w: kty %q is not EC", webcrypto.ErrData, jwk.Kty)
		}
		if jwk.Crv != string(desc.NamedCurve) {
			return nil, fmt.Errorf("%w: crv %q does not match %s", webcrypto.ErrData, jwk.Crv, desc.NamedCurve)
		}
		if jwk.Alg != "" && desc.Name == webcrypto.AlgorithmECDH {
			return nil, fmt.Errorf("%w: unexpected alg %q for ECDH", webcrypto.ErrData, jwk.Alg)
		}
		if desc.Name == webcrypto.AlgorithmECDSA {
			if err := checkJWKAlg(jwk, ecdsaJWKAlg(desc.NamedCurve)); err != nil {
				return nil, err
			}
		}
		keyType, material, err := decodeEC(jwk, desc.Name, desc.NamedCurve)
		if err != nil {
			return nil, err
		}
		return newImportedKey(desc, keyType, extractable, usages, material)

	default:
		return nil, fmt.Errorf("%w: JWK import for %s", webcrypto.ErrNotSupported, desc.Name)
	}
}

// checkJWKMetadata applies the ext and key_ops rules shared by every key type.
func checkJWKMetadata(jwk *webcrypto.JWK, extractable bool, usages []webcrypto.KeyUsage) error {
	if jwk.Ext != nil && !*jwk.Ext && extractable {
		return fmt.Errorf("%w: JWK is not extractable", webcrypto.ErrData)
	}
	if jwk.KeyOps == nil {
		return nil
	}
	for _, u := range usages {
		if !slices.Contains(jwk.KeyOps, string(u)) {
			return fmt.Errorf("%w: key_ops does not permit %q", webcrypto.ErrData, u)
		}
	}
	return nil
}

func checkJWKAlg(jwk *webcrypto.JWK, want string) error {
	if jwk.Alg != "" && jwk.Alg != want {
		return fmt.Errorf("%w: alg %q does not match %q", webcrypto.ErrData, jwk.Alg, want)
	}
	return nil
}

func keyOps(usages []webcrypto.KeyUsage) []string {
	ops := make([]string, 0, len(usages))
	for _, u := range usages {
		ops = append(ops, string(u))
	}
	return ops
}

// aesJWKAlg returns A128CTR, A256GCM and so on.
func aesJWKAlg(name webcrypto.AlgorithmName, lengthBits int) string {
	return fmt.Sprintf("A%d%s", lengthBits, strings.TrimPrefix(string(name), "AES-"))
}

// hmacJWKAlg returns HS1, HS256, HS384 or HS512.
func hmacJWKAlg(hash webcrypto.HashName) string {
	return "HS" + hashBits(hash)
}

func rsaJWKAlg(name webcrypto.AlgorithmName, hash webcrypto.HashName) string {
	switch name {
	case webcrypto.AlgorithmRSASSAPKCS1v15:
		return "RS" + hashBits(hash)
	case webcrypto.AlgorithmRSAPSS:
		return "PS" + hashBits(hash)
	case webcrypto.AlgorithmRSAOAEP:
		if hash == webcrypto.HashSHA1 {
			return "RSA-OAEP"
		}
		return "RSA-OAEP-" + hashBits(hash)
	default:
		return ""
	}
}

// ecdsaJWKAlg returns the JWS alg paired with a curve. Exported EC keys carry
// no alg, but an imported one must agree with the curve.
func ecdsaJWKAlg(curve webcrypto.NamedCurve) string {
	switch curve {
	case webcrypto.CurveP256:
		return "ES256"
	case webcrypto.CurveP384:
		return "ES384"
	case webcrypto.CurveP521:
		return "ES512"
	default:
		return ""
	}
}

func hashBits(hash webcrypto.HashName) string {
	return strings.TrimPrefix(string(hash), "SHA-")
}

func encodeInt(n *big.Int) string {
	return b64url.EncodeToString(n.Bytes())
}

func decodeMember(name, value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: JWK member %q is missing", webcrypto.ErrData, name)
	}
	b, err := b64url.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: JWK member %q: %v", webcrypto.ErrData, name, err)
	}
	return b, nil
}

func decodeInt(name, value string) (*big.Int, error) {
	b, err := decodeMember(name, value)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

func decodeOct(jwk *webcrypto.JWK) ([]byte, error) {
	if jwk.Kty != webcrypto.KtyOct {
		return nil, fmt.Errorf("%w: kty %q is not oct", webcrypto.ErrData, jwk.Kty)
	}
	return decodeMember("k", jwk.K)
}

func setRSAPublic(jwk *webcrypto.JWK, pub *rsa.PublicKey) {
	jwk.N = encodeInt(pub.N)
	jwk.E = encodeInt(big.NewInt(int64(pub.E)))
}

func decodeRSAPublic(jwk *webcrypto.JWK) (*rsa.PublicKey, error) {
	n, err := decodeInt("n", jwk.N)
	if err != nil {
		return nil, err
	}
	e, err := decodeInt("e", jwk.E)
	if err != nil {
		return nil, err
	}
	if !e.IsInt64() || e.Int64() < 3 || e.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("%w: RSA exponent out of range", webcrypto.ErrData)
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

// decodeRSAPrivate requires the two prime factors; the CRT values are
// recomputed rather than trusted.
func decodeRSAPrivate(jwk *webcrypto.JWK, pub *rsa.PublicKey) (*rsa.PrivateKey, error) {
	d, err := decodeInt("d", jwk.D)
	if err != nil {
		return nil, err
	}
	p, err := decodeInt("p", jwk.P)
	if err != nil {
		return nil, err
	}
	q, err := decodeInt("q", jwk.Q)
	if err != nil {
		return nil, err
	}
	priv := &rsa.PrivateKey{PublicKey: *pub, D: d, Primes: []*big.Int{p, q}}
	if err := priv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid RSA private key: %v", webcrypto.ErrData, err)
	}
	priv.Precompute()
	return priv, nil
}

func setECPublic(jwk *webcrypto.JWK, curve webcrypto.NamedCurve, point []byte) error {
	x, y, err := pointCoordinates(point, curve.ByteLen())
	if err != nil {
		return err
	}
	jwk.Kty = webcrypto.KtyEC
	jwk.Crv = string(curve)
	jwk.X = b64url.EncodeToString(x)
	jwk.Y = b64url.EncodeToString(y)
	return nil
}

func setECPrivate(jwk *webcrypto.JWK, curve webcrypto.NamedCurve, priv *ecdh.PrivateKey) error {
	if err := setECPublic(jwk, curve, priv.PublicKey().Bytes()); err != nil {
		return err
	}
	jwk.D = b64url.EncodeToString(priv.Bytes())
	return nil
}

// decodeEC rebuilds an EC key from its coordinates, checking that the point
// is on the curve and that d matches it.
func decodeEC(jwk *webcrypto.JWK, name webcrypto.AlgorithmName, namedCurve webcrypto.NamedCurve) (webcrypto.KeyType, any, error) {
	size := namedCurve.ByteLen()
	x, err := decodeMember("x", jwk.X)
	if err != nil {
		return "", nil, err
	}
	y, err := decodeMember("y", jwk.Y)
	if err != nil {
		return "", nil, err
	}
	if len(x) != size || len(y) != size {
		return "", nil, fmt.Errorf("%w: %s coordinates must be %d bytes", webcrypto.ErrData, namedCurve, size)
	}
	point := append(append([]byte{4}, x...), y...)

	if !jwk.IsPrivate() {
		pub, err := ecPublicFromPoint(name, namedCurve, point)
		if err != nil {
			return "", nil, err
		}
		return webcrypto.KeyTypePublic, pub, nil
	}

	d, err := decodeMember("d", jwk.D)
	if err != nil {
		return "", nil, err
	}
	curve, err := ecdhCurve(namedCurve)
	if err != nil {
		return "", nil, err
	}
	priv, err := curve.NewPrivateKey(d)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid %s private key: %v", webcrypto.ErrData, namedCurve, err)
	}
	if !bytes.Equal(priv.PublicKey().Bytes(), point) {
		return "", nil, fmt.Errorf("%w: d does not match the public point", webcrypto.ErrData)
	}
	if name == webcrypto.AlgorithmECDH {
		return webcrypto.KeyTypePrivate, priv, nil
	}

	pub, err := ecdsaPublicFromECDH(namedCurve, priv.PublicKey())
	if err != nil {
		return "", nil, err
	}
	return webcrypto.KeyTypePrivate, &ecdsa.PrivateKey{PublicKey: *pub, D: new(big.Int).SetBytes(d)}, nil
}
