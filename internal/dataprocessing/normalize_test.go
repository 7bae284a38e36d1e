package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

func TestNormalizer_String(t *testing.T) {
	n, err := NewNormalizer("")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  Chicago ", "Chicago"},
		{"collapses runs", "New   York,  NY", "New York, NY"},
		{"non-breaking spaces", "Union\u00a0\u00a0Station", "Union Station"},
		{"tabs and newlines", "Los\t\nAngeles", "Los Angeles"},
		{"single spaces kept", "San Luis Obispo", "San Luis Obispo"},
		{"composes accents", "Montre\u0301al", "Montr\u00e9al"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.String(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	f, err := frame.New(
		frame.Strings(domain.ColStationName, "  Chicago,   IL ", "Albany-Rensselaer,  NY", "   "),
		frame.Ints(domain.ColTrainNumber, 364, 48, 1),
	)
	require.NoError(t, err)

	once, err := Normalize(f, DefaultWhitespacePattern)
	require.NoError(t, err)
	twice, err := Normalize(once, DefaultWhitespacePattern)
	require.NoError(t, err)

	assert.Equal(t, once.Col(domain.ColStationName).Values, twice.Col(domain.ColStationName).Values)
	assert.Equal(t, []any{"Chicago, IL", "Albany-Rensselaer, NY", nil}, once.Col(domain.ColStationName).Values)
	assert.Equal(t, f.Col(domain.ColTrainNumber).Values, once.Col(domain.ColTrainNumber).Values)
	assert.Equal(t, f.Len(), once.Len())

	// input untouched
	assert.Equal(t, "  Chicago,   IL ", f.Col(domain.ColStationName).Values[0])
}

func TestNewNormalizer_InvalidPattern(t *testing.T) {
	_, err := NewNormalizer("[")
	assert.Error(t, err)
}

func TestReplaceValuesAndFillFromKey(t *testing.T) {
	f, err := frame.New(
		frame.Strings(domain.ColStationCode, "SAC", "BTN", "CBN", "NRG"),
		frame.Strings(domain.ColState, "CA", "VT", "", "Calif"),
	)
	require.NoError(t, err)

	out, err := ReplaceValues(f, domain.ColState, map[string]string{"CA": "California", "VT": "Vermont"})
	require.NoError(t, err)
	out, err = FillFromKey(out, domain.ColStationCode, domain.ColState,
		map[string]string{"CBN": "New York", "NRG": "California"})
	require.NoError(t, err)

	assert.Equal(t, []any{"California", "Vermont", "New York", "California"}, out.Col(domain.ColState).Values)

	_, err = ReplaceValues(f, "Nope", nil)
	assert.Error(t, err)
}
