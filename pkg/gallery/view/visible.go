package view

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

// Shuffler permutes n elements through swap, like rand.Shuffle.
type Shuffler func(n int, swap func(i, j int))

// Page is the visible prefix of the filtered and sorted images.
type Page struct {
	Items []gallery.ImageRecord
	// Total counts every image passing the filters, beyond the current page too.
	Total   int
	HasMore bool
}

// ComputeVisible filters, sorts and truncates s.Images. SortRandom draws a
// fresh permutation from shuffle on every call; a nil shuffle uses
// math/rand.
func ComputeVisible(s State, shuffle Shuffler) Page {
	matched := make([]gallery.ImageRecord, 0, len(s.Images))
	query := strings.ToLower(s.CurrentSearch)
	for _, img := range s.Images {
		if query != "" && !matchesSearch(img, query) {
			continue
		}
		if s.CurrentCategory != "" && img.Category != s.CurrentCategory {
			continue
		}
		matched = append(matched, img)
	}

	switch s.CurrentSort {
	case SortNewest:
		slices.SortStableFunc(matched, func(a, b gallery.ImageRecord) int {
			return b.Date.Compare(a.Date)
		})
	case SortPopular:
		slices.SortStableFunc(matched, func(a, b gallery.ImageRecord) int {
			return cmp.Compare(b.DownloadCount(), a.DownloadCount())
		})
	case SortRandom:
		if shuffle == nil {
			shuffle = rand.Shuffle
		}
		shuffle(len(matched), func(i, j int) {
			matched[i], matched[j] = matched[j], matched[i]
		})
	}

	page := max(s.CurrentPage, 1)
	limit := min(page*PageSize, len(matched))

	return Page{
		Items:   matched[:limit:limit],
		Total:   len(matched),
		HasMore: limit < len(matched),
	}
}

// query must already be lower case.
func matchesSearch(img gallery.ImageRecord, query string) bool {
	if strings.Contains(strings.ToLower(img.Title), query) ||
		strings.Contains(strings.ToLower(img.Description), query) {
		return true
	}
	return slices.ContainsFunc(img.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), query)
	})
}
