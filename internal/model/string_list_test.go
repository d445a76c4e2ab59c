package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStringList(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  StringList
	}{
		{"nil", nil, StringList{}},
		{"empty string", "", StringList{}},
		{"json null", "null", StringList{}},
		{"json array", `["a.jpg","b.jpg"]`, StringList{"a.jpg", "b.jpg"}},
		{"json array bytes", []byte(`["a.jpg"]`), StringList{"a.jpg"}},
		{"json encoded string", `"[\"a.jpg\",\"b.jpg\"]"`, StringList{"a.jpg", "b.jpg"}},
		{"comma joined", "a.jpg, b.jpg,,c.jpg", StringList{"a.jpg", "b.jpg", "c.jpg"}},
		{"single value", "a.jpg", StringList{"a.jpg"}},
		{"mixed scalar array", `["a.jpg", 3, null]`, StringList{"a.jpg", "3"}},
		{"json array kept verbatim", `[" a.jpg ",""]`, StringList{" a.jpg ", ""}},
		{"native slice", []string{"x", " ", "y"}, StringList{"x", " ", "y"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeStringList(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeStringListRejectsUnknownTypes(t *testing.T) {
	_, err := NormalizeStringList(42)
	assert.Error(t, err)
}

func TestStringListValue(t *testing.T) {
	v, err := StringList{"a.jpg", "b.jpg"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a.jpg","b.jpg"]`, v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestStringListScanKeepsOrder(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["b.jpg","a.jpg"]`))
	assert.Equal(t, StringList{"b.jpg", "a.jpg"}, l)
}
