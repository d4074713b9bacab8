package cryptography

import (
	"crypto"
	"crypto/ecdh"
	"crypto/elliptic"
	_ "crypto/sha1" // registers crypto.SHA1
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"

	"github.com/r-lib/jose/internal/domain/webcrypto"
)

// cryptoHash maps a WebCrypto digest name onto a crypto.Hash.
func cryptoHash(name webcrypto.HashName) (crypto.Hash, error) {
	switch name {
	case webcrypto.HashSHA1:
		return crypto.SHA1, nil
	case webcrypto.HashSHA256:
		return crypto.SHA256, nil
	case webcrypto.HashSHA384:
		return crypto.SHA384, nil
	case webcrypto.HashSHA512:
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("%w: hash %q", webcrypto.ErrNotSupported, name)
	}
}

func ellipticCurve(name webcrypto.NamedCurve) (elliptic.Curve, error) {
	switch name {
	case webcrypto.CurveP256:
		return elliptic.P256(), nil
	case webcrypto.CurveP384:
		return elliptic.P384(), nil
	case webcrypto.CurveP521:
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("%w: named curve %q", webcrypto.ErrNotSupported, name)
	}
}

func ecdhCurve(name webcrypto.NamedCurve) (ecdh.Curve, error) {
	switch name {
	case webcrypto.CurveP256:
		return ecdh.P256(), nil
	case webcrypto.CurveP384:
		return ecdh.P384(), nil
	case webcrypto.CurveP521:
		return ecdh.P521(), nil
	default:
		return nil, fmt.Errorf("%w: named curve %q", webcrypto.ErrNotSupported, name)
	}
}

// curveName is the inverse of ellipticCurve.
func curveName(curve elliptic.Curve) (webcrypto.NamedCurve, error) {
	switch curve {
	case elliptic.P256():
		return webcrypto.CurveP256, nil
	case elliptic.P384():
		return webcrypto.CurveP384, nil
	case elliptic.P521():
		return webcrypto.CurveP521, nil
	default:
		return "", fmt.Errorf("%w: unsupported curve", webcrypto.ErrNotSupported)
	}
}
