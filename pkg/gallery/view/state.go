// Package view holds the gallery state engine: an immutable snapshot of
// the image list plus the search, category, sort and pagination criteria
// applied to it.
//
// Every transition takes a State by value and returns the next State.
// Records in Images are never modified.
package view

import (
	"context"
	"fmt"
	"slices"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

// PageSize is the number of cards added by each page.
const PageSize = 12

// SortMode orders the visible images.
type SortMode string

const (
	SortNewest  SortMode = "newest"
	SortPopular SortMode = "popular"
	SortRandom  SortMode = "random"
)

// ParseSortMode validates a user supplied sort mode.
func ParseSortMode(s string) (SortMode, error) {
	switch mode := SortMode(s); mode {
	case SortNewest, SortPopular, SortRandom:
		return mode, nil
	case "":
		return SortNewest, nil
	}
	return "", fmt.Errorf("unknown sort mode %q (use newest, popular or random)", s)
}

// LoadStatus tracks the one list fetch of a State.
type LoadStatus string

const (
	StatusLoading LoadStatus = "loading"
	StatusReady   LoadStatus = "ready"
	StatusFailed  LoadStatus = "failed"
)

// Lister fetches the aggregate image list. gallery.Service and the HTTP
// client both satisfy it.
type Lister interface {
	ListImages(ctx context.Context) (*gallery.ListResult, error)
}

// State is the gallery as seen by one viewer.
type State struct {
	Images          []gallery.ImageRecord
	CurrentPage     int
	CurrentSearch   string
	CurrentCategory string
	CurrentSort     SortMode
	Selected        *gallery.ImageRecord
	Status          LoadStatus
	Err             error
}

// NewState returns the state before the list has been fetched.
func NewState() State {
	return State{
		CurrentPage: 1,
		CurrentSort: SortNewest,
		Status:      StatusLoading,
	}
}

// Load fetches the image list once. A failure is terminal for the returned
// state; a new Load starts over.
func Load(ctx context.Context, lister Lister) State {
	s := NewState()
	result, err := lister.ListImages(ctx)
	if err != nil {
		s.Status = StatusFailed
		s.Err = err
		return s
	}
	s.Images = slices.Clone(result.Images)
	s.Status = StatusReady
	return s
}

// WithImages returns a ready state over images.
func WithImages(images []gallery.ImageRecord) State {
	s := NewState()
	s.Images = slices.Clone(images)
	s.Status = StatusReady
	return s
}

func (s State) SetSearch(query string) State {
	s.CurrentSearch = query
	s.CurrentPage = 1
	return s
}

// SearchTag searches for a tag picked from a detail view.
func (s State) SearchTag(tag string) State {
	return s.SetSearch(tag)
}

// SetCategory filters by exact category; empty shows every category.
func (s State) SetCategory(category string) State {
	s.CurrentCategory = category
	s.CurrentPage = 1
	return s
}

func (s State) SetSort(mode SortMode) State {
	s.CurrentSort = mode
	s.CurrentPage = 1
	return s
}

// ResetFilters clears search and category and restores newest first.
func (s State) ResetFilters() State {
	s.CurrentSearch = ""
	s.CurrentCategory = ""
	s.CurrentSort = SortNewest
	s.CurrentPage = 1
	return s
}

// View selects the image with id from the unfiltered snapshot. Unknown ids
// leave the state unchanged.
func (s State) View(id string) State {
	for i := range s.Images {
		if s.Images[i].ID == id {
			record := s.Images[i]
			s.Selected = &record
			return s
		}
	}
	return s
}

func (s State) CloseView() State {
	s.Selected = nil
	return s
}

// LoadMore extends the visible prefix by one page. Filters are untouched.
func (s State) LoadMore() State {
	s.CurrentPage++
	return s
}
