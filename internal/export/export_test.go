package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/types"
)

var sample = []types.AggregatedLine{
	{IngredientName: "potato", MeasurementUnit: "g", TotalAmount: 350},
	{IngredientName: "salt", MeasurementUnit: "g", TotalAmount: 5},
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, sample))
	assert.Equal(t, "potato (g) — 350\nsalt (g) — 5\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sample))

	var got []types.AggregatedLine
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample, got)
}

func TestRenderEmpty(t *testing.T) {
	var text bytes.Buffer
	require.NoError(t, Render(&text, FormatText, nil))
	assert.Empty(t, text.String())

	var js bytes.Buffer
	require.NoError(t, Render(&js, FormatJSON, nil))
	assert.JSONEq(t, "[]", js.String())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"txt", FormatText, false},
		{"JSON", FormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, "shopping_list.txt", FormatText.FileName())
	assert.Equal(t, "application/json; charset=utf-8", FormatJSON.ContentType())
	assert.Error(t, Render(&bytes.Buffer{}, Format("xml"), sample))
}
