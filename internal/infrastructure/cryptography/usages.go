package cryptography

import (
	"fmt"
	"slices"

	"github.com/r-lib/jose/internal/domain/webcrypto"
)

// canonicalUsages is the order in which usages are stored on a key and
// written to key_ops.
var canonicalUsages = []webcrypto.KeyUsage{
	webcrypto.UsageEncrypt,
	webcrypto.UsageDecrypt,
	webcrypto.UsageSign,
	webcrypto.UsageVerify,
	webcrypto.UsageDeriveKey,
	webcrypto.UsageDeriveBits,
	webcrypto.UsageWrapKey,
	webcrypto.UsageUnwrapKey,
}

// allowedUsages returns the usages a key of the given algorithm and type may carry.
func allowedUsages(alg webcrypto.AlgorithmName, keyType webcrypto.KeyType) []webcrypto.KeyUsage {
	switch {
	case alg.IsAES():
		return []webcrypto.KeyUsage{webcrypto.UsageEncrypt, webcrypto.UsageDecrypt, webcrypto.UsageWrapKey, webcrypto.UsageUnwrapKey}
	case alg == webcrypto.AlgorithmHMAC:
		return []webcrypto.KeyUsage{webcrypto.UsageSign, webcrypto.UsageVerify}
	case alg.IsKDF():
		return []webcrypto.KeyUsage{webcrypto.UsageDeriveKey, webcrypto.UsageDeriveBits}
	case alg == webcrypto.AlgorithmRSAOAEP:
		if keyType == webcrypto.KeyTypePrivate {
			return []webcrypto.KeyUsage{webcrypto.UsageDecrypt, webcrypto.UsageUnwrapKey}
		}
		return []webcrypto.KeyUsage{webcrypto.UsageEncrypt, webcrypto.UsageWrapKey}
	case alg == webcrypto.AlgorithmRSASSAPKCS1v15, alg == webcrypto.AlgorithmRSAPSS, alg == webcrypto.AlgorithmECDSA:
		if keyType == webcrypto.KeyTypePrivate {
			return []webcrypto.KeyUsage{webcrypto.UsageSign}
		}
		return []webcrypto.KeyUsage{webcrypto.UsageVerify}
	case alg == webcrypto.AlgorithmECDH:
		if keyType == webcrypto.KeyTypePrivate {
			return []webcrypto.KeyUsage{webcrypto.UsageDeriveKey, webcrypto.UsageDeriveBits}
		}
		return nil
	default:
		return nil
	}
}

// filterUsages returns the requested usages that are in allowed, in canonical order.
func filterUsages(requested, allowed []webcrypto.KeyUsage) []webcrypto.KeyUsage {
	out := []webcrypto.KeyUsage{}
	for _, u := range canonicalUsages {
		if slices.Contains(requested, u) && slices.Contains(allowed, u) {
			out = append(out, u)
		}
	}
	return out
}

// checkUsages rejects any requested usage outside allowed.
func checkUsages(alg webcrypto.AlgorithmName, requested, allowed []webcrypto.KeyUsage) error {
	for _, u := range requested {
		if !slices.Contains(allowed, u) {
			return fmt.Errorf("%w: usage %q is not valid for %s", webcrypto.ErrSyntax, u, alg)
		}
	}
	return nil
}

// secretUsages validates usages for a secret key.
func secretUsages(alg webcrypto.AlgorithmName, requested []webcrypto.KeyUsage) ([]webcrypto.KeyUsage, error) {
	allowed := allowedUsages(alg, webcrypto.KeyTypeSecret)
	if err := checkUsages(alg, requested, allowed); err != nil {
		return nil, err
	}
	usages := filterUsages(requested, allowed)
	if len(usages) == 0 {
		return nil, fmt.Errorf("%w: usages cannot be empty for a secret key", webcrypto.ErrSyntax)
	}
	return usages, nil
}

// pairUsages splits the requested usages between the private and the public
// half of a generated key pair.
func pairUsages(alg webcrypto.AlgorithmName, requested []webcrypto.KeyUsage) ([]webcrypto.KeyUsage, []webcrypto.KeyUsage, error) {
	privateAllowed := allowedUsages(alg, webcrypto.KeyTypePrivate)
	publicAllowed := allowedUsages(alg, webcrypto.KeyTypePublic)
	if err := checkUsages(alg, requested, append(slices.Clone(privateAllowed), publicAllowed...)); err != nil {
		return nil, nil, err
	}

	privateUsages := filterUsages(requested, privateAllowed)
	if len(privateUsages) == 0 {
		return nil, nil, fmt.Errorf("%w: usages cannot be empty for a private key", webcrypto.ErrSyntax)
	}
	return privateUsages, filterUsages(requested, publicAllowed), nil
}

// importedUsages validates usages for an imported key of the given type.
func importedUsages(alg webcrypto.AlgorithmName, keyType webcrypto.KeyType, requested []webcrypto.KeyUsage) ([]webcrypto.KeyUsage, error) {
	allowed := allowedUsages(alg, keyType)
	if err := checkUsages(alg, requested, allowed); err != nil {
		return nil, err
	}
	usages := filterUsages(requested, allowed)
	if len(usages) == 0 && keyType != webcrypto.KeyTypePublic {
		return nil, fmt.Errorf("%w: usages cannot be empty for a %s key", webcrypto.ErrSyntax, keyType)
	}
	return usages, nil
}

// requireUsage fails with ErrInvalidAccess when key is not bound to alg or
// lacks usage.
func requireUsage(key *webcrypto.CryptoKey, alg webcrypto.AlgorithmName, usage webcrypto.KeyUsage) error {
	if key == nil {
		return fmt.Errorf("%w: key cannot be nil", webcrypto.ErrInvalidAccess)
	}
	if key.Algorithm.Name != alg {
		return fmt.Errorf("%w: key is bound to %s, not %s", webcrypto.ErrInvalidAccess, key.Algorithm.Name, alg)
	}
	if !key.HasUsage(usage) {
		return fmt.Errorf("%w: key does not permit %q", webcrypto.ErrInvalidAccess, usage)
	}
	return nil
}
