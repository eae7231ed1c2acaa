package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	v := Contains("Hello")
	assert.True(t, v.Validate([]byte(`[[["Hello","你好"]]]`)))
	assert.False(t, v.Validate([]byte(`[[["hello"]]]`)))
	assert.False(t, v.Validate(nil))
}

func TestEquals(t *testing.T) {
	v := Equals("ok")
	assert.True(t, v.Validate([]byte("ok\n")))
	assert.False(t, v.Validate([]byte("ok ok")))
}

func TestNewValidator(t *testing.T) {
	v, err := NewValidator("", "Hello")
	require.NoError(t, err)
	assert.True(t, v.Validate([]byte("Hello world")))

	v, err = NewValidator("EQUALS", "Hello")
	require.NoError(t, err)
	assert.False(t, v.Validate([]byte("Hello world")))

	_, err = NewValidator("regex", "H.*")
	assert.Error(t, err)
}
