package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"width * height", "(width * height)"},
		{"a + b * c", "(a + (b * c))"},
		{"a * b + c", "((a * b) + c)"},
		{"(a + b) * c", "((a + b) * c)"},
		{"a - b - c", "((a - b) - c)"},
		{"a / b / c", "((a / b) / c)"},
		{"-a + b", "((0 - a) + b)"},
		{"3.14 * r * r", "((3.14 * r) * r)"},
		{"scale_factor * inner()", "(scale_factor * inner())"},
		{"42", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"a +",
		"(a + b",
		"a b",
		"inner(x)",
		"1.2.3",
		"a ?",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestIdentsAndCalls(t *testing.T) {
	node, err := Parse("scale * inner() + width * width - other()")
	require.NoError(t, err)

	assert.Equal(t, []string{"scale", "width"}, Idents(node))
	assert.Equal(t, []string{"inner", "other"}, Calls(node))
}

func TestSubstitute(t *testing.T) {
	node, err := Parse("width * height")
	require.NoError(t, err)

	side, err := Parse("side")
	require.NoError(t, err)

	out := Substitute(node, map[string]Node{"width": side, "height": side}, nil)
	assert.Equal(t, "(side * side)", out.String())

	// The original tree is untouched.
	assert.Equal(t, "(width * height)", node.String())
}

func TestSubstituteCall(t *testing.T) {
	outer, err := Parse("scale_factor * inner()")
	require.NoError(t, err)

	body, err := Parse("width * height")
	require.NoError(t, err)

	out := Substitute(outer, nil, map[string]Node{"inner": body})
	assert.Equal(t, "(scale_factor * (width * height))", out.String())
}

func TestRenderGo(t *testing.T) {
	node, err := Parse("width * height + 1")
	require.NoError(t, err)

	got := RenderGo(node, func(name string) string { return "c.F" + name })
	assert.Equal(t, "((c.Fwidth * c.Fheight) + 1)", got)
}
