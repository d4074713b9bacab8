package webcrypto

import (
	"encoding/json"
	"fmt"
)

// JWK is a JSON Web Key (RFC 7517). Members are declared in lexicographic
// order so that the marshaled form matches what browsers print for an
// exported key.
type JWK struct {
	Alg    string   `json:"alg,omitempty"`
	Crv    string   `json:"crv,omitempty"`
	D      string   `json:"d,omitempty"`
	DP     string   `json:"dp,omitempty"`
	DQ     string   `json:"dq,omitempty"`
	E      string   `json:"e,omitempty"`
	Ext    *bool    `json:"ext,omitempty"`
	K      string   `json:"k,omitempty"`
	KeyOps []string `json:"key_ops"`
	Kty    string   `json:"kty"`
	N      string   `json:"n,omitempty"`
	P      string   `json:"p,omitempty"`
	Q      string   `json:"q,omitempty"`
	QI     string   `json:"qi,omitempty"`
	X      string   `json:"x,omitempty"`
	Y      string   `json:"y,omitempty"`
}

// JWK key types
const (
	KtyOct = "oct"
	KtyRSA = "RSA"
	KtyEC  = "EC"
)

// String returns the compact JSON form.
func (j *JWK) String() string {
	data, err := json.Marshal(j)
	if err != nil {
		return ""
	}
	return string(data)
}

// ParseJWK decodes a JSON Web Key.
func ParseJWK(data []byte) (*JWK, error) {
	var jwk JWK
	if err := json.Unmarshal(data, &jwk); err != nil {
		return nil, fmt.Errorf("%w: invalid JWK: %v", ErrData, err)
	}
	return &jwk, nil
}

// IsPrivate reports whether the key carries private material.
func (j *JWK) IsPrivate() bool {
	return j.D != ""
}
