package ref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		expected  ID
	}{
		{"Empty reference", "", ""},
		{"Whitespace only", "   ", ""},
		{"Bare short id", "c1", "c1"},
		{"URL with short id", "https://api.example.com/courses/c1", "c1"},
		{"Trailing slash", "https://api.example.com/courses/c1/", "c1"},
		{"Hex token", "https://api.example.com/courses/64b7f0c2a1e4d3b2c1a09f8e", "64b7f0c2a1e4d3b2c1a09f8e"},
		{"Hex token upper case", "/courses/64B7F0C2A1E4D3B2C1A09F8E", "64b7f0c2a1e4d3b2c1a09f8e"},
		{"Hex token glued to prefix", "course-64b7f0c2a1e4d3b2c1a09f8e", "64b7f0c2a1e4d3b2c1a09f8e"},
		{"Query string ignored", "/courses/c1?expand=room", "c1"},
		{"Too short hex falls back to segment", "/courses/abc123", "abc123"},
		{"PocketBase record id", "q5x1b6whizo4zzo", "q5x1b6whizo4zzo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extract(tt.reference))
		})
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("/courses/c1", "c1"))
	assert.False(t, Matches("/courses/c10", "c1"))
	assert.False(t, Matches("", ""))
	assert.False(t, Matches("/courses/c1", ""))
}

func TestID_IsZero(t *testing.T) {
	var id ID
	assert.True(t, id.IsZero())
	assert.False(t, ID("c1").IsZero())
	assert.Equal(t, "c1", ID("c1").String())
}

func BenchmarkExtract(b *testing.B) {
	reference := "https://api.example.com/api/collections/courses/records/64b7f0c2a1e4d3b2c1a09f8e"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Extract(reference)
	}
}

func TestID_Canonical(t *testing.T) {
	assert.Equal(t, ID("64b7f0c2a1e4d3b2c1a09f8e"), ID("64B7F0C2A1E4D3B2C1A09F8E").Canonical())
	assert.Equal(t, ID("c1"), ID("c1").Canonical())
	assert.Equal(t, ID(""), ID("").Canonical())
	assert.Equal(t, Extract("https://x/api/courses/64B7F0C2A1E4D3B2C1A09F8E"), ID("64B7F0C2A1E4D3B2C1A09F8E").Canonical())
}
