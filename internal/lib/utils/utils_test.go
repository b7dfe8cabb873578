package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sala Reunião Grande", "sala-reuniao-grande"},
		{"Consultório 2", "consultorio-2"},
		{"  Espaço   Café  ", "espaco-cafe"},
		{"UPPER case", "upper-case"},
		{"já-com-hifen", "ja-com-hifen"},
		{"semacento", "semacento"},
		{"...", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestNewReference(t *testing.T) {
	ref, err := NewReference(5)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	// Base58 never contains the lookalike characters.
	for _, r := range ref {
		assert.NotContains(t, "0OIl", string(r))
	}

	// Consecutive calls produce distinct codes.
	other, err := NewReference(5)
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)
}

func TestNewReferenceDefaultsLength(t *testing.T) {
	ref, err := NewReference(0)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
}

func TestPtr(t *testing.T) {
	v := Ptr(42)
	require.NotNil(t, v)
	assert.Equal(t, 42, *v)

	s := Ptr("hello")
	assert.Equal(t, "hello", *s)
}
