package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/r-lib/jose/internal/domain/vectors"

	"github.com/stretchr/testify/require"
)

// WriteVectorFile writes vs to path in the JSON Lines layout read by the
// verify command, replacing any existing file.
func WriteVectorFile(t *testing.T, path string, vs ...*vectors.Vector) {
	t.Helper()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, v := range vs {
		require.NoError(t, enc.Encode(v))
	}

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
}
