package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "raw JSON untouched",
			input: `{"harga_terendah":100}`,
			want:  `{"harga_terendah":100}`,
		},
		{
			name:  "json fence with language tag",
			input: "```json\n{\"harga_terendah\":100}\n```",
			want:  `{"harga_terendah":100}`,
		},
		{
			name:  "bare fence without language tag",
			input: "```\n{\"harga_terendah\":100}\n```",
			want:  `{"harga_terendah":100}`,
		},
		{
			name:  "surrounding whitespace",
			input: "  \n```json\n{}\n```  ",
			want:  `{}`,
		},
		{
			name:  "prose is not stripped",
			input: `here is your answer: {"harga_terendah":100}`,
			want:  `here is your answer: {"harga_terendah":100}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.input))
		})
	}
}

func TestParseJSONResponse(t *testing.T) {
	type priceRange struct {
		Low  float64 `json:"harga_terendah"`
		High float64 `json:"harga_tertinggi"`
	}

	got, err := ParseJSONResponse[priceRange]("```json\n{\"harga_terendah\":100,\"harga_tertinggi\":200}\n```")
	require.NoError(t, err)
	assert.Equal(t, priceRange{Low: 100, High: 200}, got)

	_, err = ParseJSONResponse[priceRange](`here is your answer: {"harga_terendah":100,"harga_tertinggi":200}`)
	assert.Error(t, err, "prose around the JSON must be rejected")
}
