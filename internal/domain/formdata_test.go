package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormDataPreservesInsertionOrder(t *testing.T) {
	d := NewFormData()
	d.Set("firstName", "Amina")
	d.Set("guestCount", 2.0)
	d.Set("dietary-needs", []any{"halal"})
	d.Set("firstName", "Bilal") // overwrite keeps original position

	assert.Equal(t, []string{"firstName", "guestCount", "dietary-needs"}, d.Keys())
	assert.Equal(t, 3, d.Len())

	v, ok := d.Get("firstName")
	require.True(t, ok)
	assert.Equal(t, "Bilal", v)

	_, ok = d.Get("missing")
	assert.False(t, ok)
}

func TestFormDataJSONOrder(t *testing.T) {
	// Key order survives a decode/encode cycle; Go maps alone would not
	// guarantee this.
	in := `{"zebra":"z","alpha":"a","guestCount":2,"nested":{"type":"typed","value":"AK"}}`

	var d FormData
	require.NoError(t, json.Unmarshal([]byte(in), &d))
	assert.Equal(t, []string{"zebra", "alpha", "guestCount", "nested"}, d.Keys())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))

	n, ok := d.Get("guestCount")
	require.True(t, ok)
	assert.Equal(t, 2.0, n, "numbers normalize to float64")
}

func TestFormDataRejectsNonObject(t *testing.T) {
	var d FormData
	assert.Error(t, json.Unmarshal([]byte(`["a","b"]`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"text"`), &d))
}

func TestFormDataClone(t *testing.T) {
	d := NewFormData()
	d.Set("a", "1")

	c := d.Clone()
	c.Set("b", "2")

	assert.Equal(t, []string{"a"}, d.Keys())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}

func TestFormDataEmpty(t *testing.T) {
	var d FormData

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))

	assert.Empty(t, d.Keys())
	assert.Equal(t, 0, d.Len())
}
