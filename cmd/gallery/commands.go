package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-gallery/pkg/gallery/client"
	"github.com/tendant/simple-gallery/pkg/gallery/view"
)

func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every image in the gallery",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClientFromFlags(cmd)

			result, err := c.ListImages(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list images: %w", err)
			}

			out := cmd.OutOrStdout()
			if result.Count == 0 {
				fmt.Fprintln(out, "No images found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tDATE")
			for _, img := range result.Images {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", img.ID, img.Title, img.Category, img.Date.UTC().Format("2006-01-02"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal: %d images\n", result.Count)
			return nil
		},
	}

	return cmd
}

func NewUploadCommand() *cobra.Command {
	var title, description, tags, category, aiTool, license string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image with its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]

			f, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			if title == "" {
				title = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
			}

			c := newClientFromFlags(cmd)
			id, err := c.Upload(cmd.Context(), client.UploadRequest{
				Title:       title,
				Description: description,
				Tags:        strings.Split(tags, ","),
				Category:    category,
				AITool:      aiTool,
				License:     license,
				FileName:    filepath.Base(filePath),
				ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(filePath))),
				Data:        f,
			})
			if err != nil {
				return fmt.Errorf("failed to upload image: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Image uploaded successfully\nImage ID: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "image title (default: file name)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "image description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	cmd.Flags().StringVar(&category, "category", "", "category (anime, digital-art, landscape, ...)")
	cmd.Flags().StringVar(&aiTool, "ai-tool", "", "tool used to create the image")
	cmd.Flags().StringVar(&license, "license", "cc0", "license (cc0, cc-by, cc-by-sa, cc-by-nc, all-rights-reserved)")

	return cmd
}

func NewDownloadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <image-id>",
		Short: "Download an image by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClientFromFlags(cmd)

			download, err := c.Download(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to download image: %w", err)
			}

			target := output
			if target == "" {
				target = filepath.Base(download.Filename)
			}
			if target == "" || target == "." || target == "/" {
				target = args[0]
			}
			if err := os.WriteFile(target, download.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes to %s\n", len(download.Data), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: the image filename)")

	return cmd
}

func NewBrowseCommand() *cobra.Command {
	var search, category, sortMode, viewID string
	var pages int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search, filter and page through the gallery",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := view.ParseSortMode(sortMode)
			if err != nil {
				return err
			}

			s := view.Load(cmd.Context(), newClientFromFlags(cmd))
			if s.Status == view.StatusFailed {
				return fmt.Errorf("failed to load images: %w", s.Err)
			}

			s = s.SetSearch(search).SetCategory(category).SetSort(mode)
			for i := 1; i < pages; i++ {
				s = s.LoadMore()
			}
			if viewID != "" {
				s = s.View(viewID)
				if s.Selected == nil {
					return fmt.Errorf("image %s not found", viewID)
				}
			}

			return view.TextRenderer{}.Render(cmd.OutOrStdout(), view.Render(s, nil))
		},
	}

	cmd.Flags().StringVarP(&search, "search", "q", "", "search title, description and tags")
	cmd.Flags().StringVar(&category, "category", "", "only show this category")
	cmd.Flags().StringVar(&sortMode, "sort", "newest", "newest, popular or random")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to show")
	cmd.Flags().StringVar(&viewID, "view", "", "show the details of one image")

	return cmd
}
