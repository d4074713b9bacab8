// Package cryptoalg defines the per-family processor contracts (AES, HMAC, RSA,
// elliptic curve, key derivation) that the subtle API implementation is built on.
// Processors operate on native Go key types and raw byte slices; they know
// nothing about key handles, usages or JWK.
package cryptoalg
