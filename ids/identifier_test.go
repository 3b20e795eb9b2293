package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraderId(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr error
		wantTag string
	}{
		{name: "valid", value: "ACME-001", wantTag: "001"},
		{name: "multiple hyphens uses last", value: "ACME-DESK-A", wantTag: "A"},
		{name: "empty", value: "", wantErr: ErrEmptyValue},
		{name: "whitespace only", value: "   ", wantErr: ErrEmptyValue},
		{name: "missing hyphen", value: "ACME", wantErr: ErrMissingTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewTraderId(tt.value)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, id.Value())
			assert.Equal(t, tt.wantTag, id.GetTag())
		})
	}
}

func TestNewComponentId(t *testing.T) {
	_, err := NewComponentId("")
	require.ErrorIs(t, err, ErrEmptyValue)

	id, err := NewComponentId("risk-engine")
	require.NoError(t, err)
	assert.Equal(t, "risk-engine", id.String())
}

func TestIdentifierEqualsAndLess(t *testing.T) {
	a, err := NewComponentId("alpha")
	require.NoError(t, err)
	b, err := NewComponentId("beta")
	require.NoError(t, err)
	aAgain, err := NewComponentId("alpha")
	require.NoError(t, err)

	assert.True(t, a.Equals(aAgain.Identifier))
	assert.False(t, a.Equals(b.Identifier))
	assert.True(t, a.Less(b.Identifier))
	assert.False(t, b.Less(a.Identifier))
}

func TestIdentifierHashIsStableAndMemoised(t *testing.T) {
	a, err := NewComponentId("alpha")
	require.NoError(t, err)

	h1 := a.Hash()
	h2 := a.Hash()
	assert.Equal(t, h1, h2)

	b, err := NewComponentId("alpha")
	require.NoError(t, err)
	assert.Equal(t, h1, b.Hash())
}

func TestTraderIdTextMarshalling(t *testing.T) {
	id, err := NewTraderId("ACME-001")
	require.NoError(t, err)

	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ACME-001", string(text))

	var round TraderId
	require.NoError(t, round.UnmarshalText(text))
	assert.True(t, round.Equals(id.Identifier))

	var bad TraderId
	require.ErrorIs(t, bad.UnmarshalText([]byte("NOHYPHEN")), ErrMissingTag)
}
