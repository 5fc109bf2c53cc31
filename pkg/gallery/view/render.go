package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

// DisplayStatus is what the gallery area shows.
type DisplayStatus string

const (
	DisplayLoading DisplayStatus = "loading"
	DisplayError   DisplayStatus = "error"
	DisplayEmpty   DisplayStatus = "empty"
	DisplayReady   DisplayStatus = "ready"
)

const (
	unknown         = "Unknown"
	dateLayout      = "2006-01-02"
	fallbackName    = "image.jpg"
	loadFailureText = "Failed to load images. Please refresh."
)

var categoryLabels = map[string]string{
	"anime":       "🎌 Anime",
	"digital-art": "🎨 Art",
	"landscape":   "🏔️ Landscape",
	"cyberpunk":   "🌃 Cyberpunk",
	"fantasy":     "✨ Fantasy",
	"abstract":    "🌀 Abstract",
	"character":   "👤 Character",
}

// CategoryLabel returns the display label of category, or category itself
// when it is not one of the known labels.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

// Card is one gallery grid item.
type Card struct {
	Index         int
	ID            string
	Title         string
	URL           string
	CategoryLabel string
}

// Detail is the single image view.
type Detail struct {
	ID            string
	Title         string
	Description   string
	URL           string
	Dimensions    string
	Format        string
	Date          string
	Tags          []string
	CategoryLabel string
	License       string
	AITool        string
	Downloads     int
	// Filename is the name offered when saving the download.
	Filename string
}

// ViewModel is the render-ready gallery.
type ViewModel struct {
	Status       DisplayStatus
	Message      string
	Cards        []Card
	TotalCount   int
	ShowLoadMore bool
	Detail       *Detail
}

// Render derives the view model of s.
func Render(s State, shuffle Shuffler) ViewModel {
	vm := ViewModel{Cards: []Card{}}
	if s.Selected != nil {
		vm.Detail = newDetail(*s.Selected)
	}

	switch s.Status {
	case StatusLoading, "":
		vm.Status = DisplayLoading
		return vm
	case StatusFailed:
		vm.Status = DisplayError
		vm.Message = loadFailureText
		return vm
	}

	page := ComputeVisible(s, shuffle)
	vm.TotalCount = page.Total
	vm.ShowLoadMore = page.HasMore
	if len(page.Items) == 0 && max(s.CurrentPage, 1) == 1 {
		vm.Status = DisplayEmpty
		return vm
	}

	vm.Status = DisplayReady
	for i, img := range page.Items {
		vm.Cards = append(vm.Cards, Card{
			Index:         i,
			ID:            img.ID,
			Title:         img.Title,
			URL:           img.URL,
			CategoryLabel: CategoryLabel(img.Category),
		})
	}
	return vm
}

func newDetail(img gallery.ImageRecord) *Detail {
	d := &Detail{
		ID:            img.ID,
		Title:         img.Title,
		Description:   img.Description,
		URL:           img.URL,
		Dimensions:    orUnknown(img.Dimensions),
		Format:        orUnknown(img.Format),
		Date:          unknown,
		Tags:          append([]string(nil), img.Tags...),
		CategoryLabel: CategoryLabel(img.Category),
		License:       img.License,
		AITool:        img.AITool,
		Downloads:     img.DownloadCount(),
		Filename:      img.Filename,
	}
	if !img.Date.IsZero() {
		d.Date = img.Date.UTC().Format(dateLayout)
	}
	if d.Filename == "" {
		d.Filename = fallbackName
	}
	return d
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

// Renderer draws a view model to w.
type Renderer interface {
	Render(w io.Writer, vm ViewModel) error
}

// TextRenderer draws the gallery as plain text for terminals.
type TextRenderer struct{}

func (TextRenderer) Render(w io.Writer, vm ViewModel) error {
	var b strings.Builder

	switch vm.Status {
	case DisplayLoading:
		b.WriteString("Loading images...\n")
	case DisplayError:
		b.WriteString(vm.Message + "\n")
	case DisplayEmpty:
		b.WriteString("No images found.\n")
	case DisplayReady:
		fmt.Fprintf(&b, "%d images\n", vm.TotalCount)
		for _, c := range vm.Cards {
			fmt.Fprintf(&b, "%3d. %s [%s] %s\n", c.Index+1, c.Title, c.CategoryLabel, c.ID)
		}
		if vm.ShowLoadMore {
			fmt.Fprintf(&b, "... %d more\n", vm.TotalCount-len(vm.Cards))
		}
	}

	if d := vm.Detail; d != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s\n", d.Title)
		if d.Description != "" {
			fmt.Fprintf(&b, "%s\n", d.Description)
		}
		fmt.Fprintf(&b, "  ID:         %s\n", d.ID)
		fmt.Fprintf(&b, "  Category:   %s\n", d.CategoryLabel)
		fmt.Fprintf(&b, "  Size:       %s\n", d.Dimensions)
		fmt.Fprintf(&b, "  Format:     %s\n", d.Format)
		fmt.Fprintf(&b, "  Date:       %s\n", d.Date)
		if len(d.Tags) > 0 {
			fmt.Fprintf(&b, "  Tags:       %s\n", strings.Join(d.Tags, ", "))
		}
		if d.License != "" {
			fmt.Fprintf(&b, "  License:    %s\n", d.License)
		}
		fmt.Fprintf(&b, "  URL:        %s\n", d.URL)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
