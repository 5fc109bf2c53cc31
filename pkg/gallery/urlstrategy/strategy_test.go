package urlstrategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawGitHubStrategy(t *testing.T) {
	s := NewRawGitHubStrategy("octo", "gallery", "")
	assert.Equal(t, "main", s.Branch)
	assert.Equal(t,
		"https://raw.githubusercontent.com/octo/gallery/main/images/1718000000123-abcd1234.png",
		s.ImageURL("images/1718000000123-abcd1234.png"))

	s = NewRawGitHubStrategy("octo", "gallery", "published")
	assert.Equal(t,
		"https://raw.githubusercontent.com/octo/gallery/published/images/a%20b.jpg",
		s.ImageURL("images/a b.jpg"))
}

func TestCDNStrategy(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{"plain", "https://cdn.example.com", "images/x.png", "https://cdn.example.com/images/x.png"},
		{"trailing slash", "https://cdn.example.com/gallery/", "images/x.png", "https://cdn.example.com/gallery/images/x.png"},
		{"leading slash path", "https://cdn.example.com", "/images/x.png", "https://cdn.example.com/images/x.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewCDNStrategy(tt.base).ImageURL(tt.path))
		})
	}
}
