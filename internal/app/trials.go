package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"slices"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/domain/webcrypto"
)

// Key and output names written into vectors.
const (
	KeySecret  = "key"
	KeyPrivate = "privateKey"
	KeyPublic  = "publicKey"

	OutputCounter   = "counter"
	OutputIV        = "iv"
	OutputCT        = "ct"
	OutputBits      = "bits"
	OutputSignature = "sig"
	OutputSalt      = "salt"
	OutputInfo      = "info"
)

// GenerateFunc produces a vector for plaintext.
type GenerateFunc func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error)

// VerifyFunc checks a vector produced by the matching GenerateFunc.
type VerifyFunc func(ctx context.Context, subtle webcrypto.SubtleCrypto, vector *vectors.Vector) error

// Trial is one entry of the catalog.
type Trial struct {
	Name        string
	Description string
	Generate    GenerateFunc
	Verify      VerifyFunc
}

var catalog = []Trial{
	aesCTRTrial,
	aesCBCTrial,
	aesGCMTrial,
	hmacTrial,
	rsassaTrial,
	rsaOAEPTrial,
	ecdsaTrial,
	ecdhTrial,
	rsaPSSTrial,
	hkdfTrial,
	pbkdf2Trial,
}

// Trials returns the catalog in its fixed order.
func Trials() []Trial {
	return slices.Clone(catalog)
}

// TrialNames returns the names of every trial.
func TrialNames() []string {
	names := make([]string, 0, len(catalog))
	for _, t := range catalog {
		names = append(names, t.Name)
	}
	return names
}

// LookupTrial finds a trial by name.
func LookupTrial(name string) (Trial, error) {
	for _, t := range catalog {
		if t.Name == name {
			return t, nil
		}
	}
	return Trial{}, fmt.Errorf("%w: %q", vectors.ErrUnknownTrial, name)
}

// keyUsages are the usages every trial and keygen request asks for.
func keyUsages(alg webcrypto.AlgorithmName) []webcrypto.KeyUsage {
	switch {
	case alg.IsAES():
		return []webcrypto.KeyUsage{webcrypto.UsageEncrypt, webcrypto.UsageDecrypt}
	case alg == webcrypto.AlgorithmRSAOAEP:
		return []webcrypto.KeyUsage{webcrypto.UsageEncrypt, webcrypto.UsageDecrypt}
	case alg == webcrypto.AlgorithmECDH:
		return []webcrypto.KeyUsage{webcrypto.UsageDeriveKey, webcrypto.UsageDeriveBits}
	case alg.IsKDF():
		return []webcrypto.KeyUsage{webcrypto.UsageDeriveBits}
	default:
		return []webcrypto.KeyUsage{webcrypto.UsageSign, webcrypto.UsageVerify}
	}
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

// exportPair adds both halves of a key pair to v.
func exportPair(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector, pair *webcrypto.CryptoKeyPair) error {
	privateJWK, err := subtle.ExportJWK(ctx, pair.PrivateKey)
	if err != nil {
		return fmt.Errorf("failed to export private key: %w", err)
	}
	publicJWK, err := subtle.ExportJWK(ctx, pair.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to export public key: %w", err)
	}
	v.AddKey(KeyPrivate, privateJWK)
	v.AddKey(KeyPublic, publicJWK)
	return nil
}

// importKey re-imports the named JWK of v for the given usage.
func importKey(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector, name string, algorithm webcrypto.Algorithm, usage webcrypto.KeyUsage) (*webcrypto.CryptoKey, error) {
	jwk, err := v.Key(name)
	if err != nil {
		return nil, err
	}
	var usages []webcrypto.KeyUsage
	if usage != "" {
		usages = []webcrypto.KeyUsage{usage}
	}
	key, err := subtle.ImportJWK(ctx, jwk, algorithm, false, usages)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", name, err)
	}
	return key, nil
}

func expectEqual(what string, want, got []byte) error {
	if !bytes.Equal(want, got) {
		return fmt.Errorf("%w: %s differs", vectors.ErrVectorMismatch, what)
	}
	return nil
}

func expectValid(what string, valid bool) error {
	if !valid {
		return fmt.Errorf("%w: %s does not verify", vectors.ErrVectorMismatch, what)
	}
	return nil
}

// operationMismatch reports an operation failure on recorded data, such as
// a GCM tag that no longer authenticates, as a mismatch.
func operationMismatch(what string, err error) error {
	if errors.Is(err, webcrypto.ErrOperation) {
		return fmt.Errorf("%w: %s: %w", vectors.ErrVectorMismatch, what, err)
	}
	return err
}
