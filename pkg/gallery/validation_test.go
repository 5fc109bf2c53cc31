package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{" , ,", []string{}},
		{"sky", []string{"sky"}},
		{"sky, sea ,sun", []string{"sky", "sea", "sun"}},
		{"Sky,sky,SKY,sea", []string{"Sky", "sea"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTags(tt.raw))
		})
	}
}

func TestValidateImageID(t *testing.T) {
	valid := []string{"1718000000123-abcd1234", "abc_DEF-09", "0196f2a0-7b1c-7c3e-9d4f-1a2b3c4d5e6f"}
	for _, id := range valid {
		assert.NoError(t, ValidateImageID(id), id)
	}

	invalid := []string{"", "..", "a/b", "a.json", "id with space", "%2e%2e"}
	for _, id := range invalid {
		assert.ErrorIs(t, ValidateImageID(id), ErrInvalidInput, id)
	}
}

func TestDetectImageType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n")
	gif := []byte("GIF89a")

	assert.Equal(t, "image/jpeg", detectImageType("image/jpeg", png))
	assert.Equal(t, "image/webp", detectImageType("IMAGE/WEBP; q=1", png))
	assert.Equal(t, "image/png", detectImageType("", png))
	assert.Equal(t, "image/gif", detectImageType("application/octet-stream", gif))
	assert.Equal(t, "text/plain", detectImageType("", []byte("hello")))
}
