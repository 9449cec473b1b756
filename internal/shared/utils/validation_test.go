package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAppName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "demo", false},
		{"with dash and underscore", "my-app_2", false},
		{"with dot", "site.v2", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"hidden", ".secret", true},
		{"traversal", "../etc", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"space", "my app", true},
		{"null byte", "demo\x00", true},
		{"reserved", "edit", true},
		{"reserved case", "Metrics", true},
		{"too long", strings.Repeat("a", MaxAppNameLength+1), true},
		{"max length", strings.Repeat("a", MaxAppNameLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAppName(tt.input)
			if tt.wantErr {
				var verr *ValidationError
				assert.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateContentSize(t *testing.T) {
	assert.NoError(t, ValidateContentSize([]byte("hello"), 5))
	assert.Error(t, ValidateContentSize([]byte("hello!"), 5))
	assert.NoError(t, ValidateContentSize(make([]byte, MaxContentSize), 0))
	assert.Error(t, ValidateContentSize(make([]byte, MaxContentSize+1), 0))
}

func TestHasherETag(t *testing.T) {
	h := DefaultHasher()

	tag := h.ETag([]byte("<p>hi</p>"))
	assert.Len(t, tag, 34)
	assert.Equal(t, tag, h.ETag([]byte("<p>hi</p>")))
	assert.NotEqual(t, tag, h.ETag([]byte("<p>bye</p>")))
}

func TestHasherAlgorithms(t *testing.T) {
	data := []byte("abc")

	// Known digests for "abc"
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		NewHasher(SHA256).Hash(data))
	assert.Equal(t,
		"bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319",
		NewHasher(BLAKE2b256).Hash(data))
	assert.Equal(t, BLAKE2b256, DefaultHasher().Algorithm())
}
