package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ScaleFactor", "scalefactor"},
		{"scale_factor", "scalefactor"},
		{"scaleFactor", "scalefactor"},
		{"XMLParser", "xmlparser"},
		{"width", "width"},
		{"Width", "width"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIdent(tt.input))
		})
	}
}

func TestSameIdent(t *testing.T) {
	assert.True(t, SameIdent("scale_factor", "ScaleFactor"))
	assert.True(t, SameIdent("width", "Width"))
	assert.False(t, SameIdent("width", "Height"))
}

func TestTokenizeCamelCase(t *testing.T) {
	assert.Equal(t, []string{"Scale", "Factor"}, tokenizeCamelCase("ScaleFactor"))
	assert.Equal(t, []string{"XML", "Parser"}, tokenizeCamelCase("XMLParser"))
	assert.Equal(t, []string{"get", "HTTP", "Response"}, tokenizeCamelCase("getHTTPResponse"))
	assert.Nil(t, tokenizeCamelCase(""))
}
