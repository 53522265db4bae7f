package bbolt

import (
	"testing"

	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedTestSnapshot(t *testing.T) []byte {
	t.Helper()
	blob, err := encodeSnapshot(makeTestRecord(t).Snapshot)
	require.NoError(t, err)
	return blob
}

func TestEncodeSnapshot_Deterministic(t *testing.T) {
	a := encodedTestSnapshot(t)
	b := encodedTestSnapshot(t)
	assert.Equal(t, a, b)
	assert.Equal(t, byte(formatVersion), a[0])
	assert.Equal(t, byte(flagLinks), a[1])
}

func TestEncodeSnapshot_Nil(t *testing.T) {
	_, err := encodeSnapshot(nil)
	assert.Error(t, err)
}

func TestDecodeSnapshot_EmptyValue(t *testing.T) {
	a := automaton.New[string]()
	a.Set("k", "")
	a.Set("", "root")
	require.NoError(t, a.Build(t.Context()))
	snap := a.Serialize()

	blob, err := encodeSnapshot(snap)
	require.NoError(t, err)
	got, err := decodeSnapshot(blob)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestDecodeSnapshot_EveryTruncationFails(t *testing.T) {
	// Every proper prefix of a valid blob must be rejected without panicking.
	blob := encodedTestSnapshot(t)
	for n := 0; n < len(blob); n++ {
		_, err := decodeSnapshot(blob[:n])
		assert.Error(t, err, "prefix of %d bytes", n)
	}
}

func TestDecodeSnapshot_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr string
	}{
		{
			name:    "wrong version",
			mutate:  func(b []byte) []byte { b[0] = 9; return b },
			wantErr: "unsupported snapshot format version 9",
		},
		{
			name:    "trailing bytes",
			mutate:  func(b []byte) []byte { return append(b, 0) },
			wantErr: "trailing bytes",
		},
		{
			name: "huge node count",
			mutate: func(b []byte) []byte {
				b[6], b[7], b[8], b[9] = 0xff, 0xff, 0xff, 0x7f
				return b
			},
			wantErr: "exceeds blob size",
		},
		{
			name: "bad value flag",
			// Root node of the he/she/his/hers set: depth(4) edges(2) 2×5 then flag.
			mutate:  func(b []byte) []byte { b[headerSize+4+2+2*edgeSize] = 7; return b },
			wantErr: "bad value flag",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			blob := encodedTestSnapshot(t)
			_, err := decodeSnapshot(tc.mutate(blob))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
