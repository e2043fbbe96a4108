package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/billmal071/olsearch/internal/openlibrary"
	"github.com/billmal071/olsearch/internal/tui"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printDocs prints search results in a simple numbered format
func printDocs(w io.Writer, docs []openlibrary.Doc, start int) {
	for i, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%d. %s\n", start+i+1, title)
		if authors := doc.AuthorList(); authors != "" {
			fmt.Fprintf(w, "   Author: %s\n", authors)
		}

		var meta []string
		if doc.FirstPublishYear != 0 {
			meta = append(meta, fmt.Sprintf("First published: %d", doc.FirstPublishYear))
		}
		if doc.EditionCount != 0 {
			meta = append(meta, fmt.Sprintf("Editions: %d", doc.EditionCount))
		}
		if len(doc.Languages) > 0 {
			meta = append(meta, "Languages: "+strings.Join(doc.Languages, ","))
		}
		if len(meta) > 0 {
			fmt.Fprintf(w, "   %s\n", strings.Join(meta, " | "))
		}
		if doc.Key != "" {
			fmt.Fprintf(w, "   Key: %s\n", doc.Key)
		}
		fmt.Fprintln(w)
	}
}

// printDocDetail renders one selected result in a box
func printDocDetail(w io.Writer, doc *openlibrary.Doc, baseURL string) {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render(doc.Title))
	if authors := doc.AuthorList(); authors != "" {
		b.WriteString("\nby " + authors)
	}
	if doc.FirstPublishYear != 0 {
		b.WriteString(fmt.Sprintf("\nFirst published: %d", doc.FirstPublishYear))
	}
	if doc.Key != "" {
		b.WriteString("\n" + tui.KeyStyle.Render(doc.URL(baseURL)))
	}
	fmt.Fprintln(w, tui.BoxStyle.Render(b.String()))
}

// withSpinner shows an indeterminate spinner on stderr while fn runs
func withSpinner(description string, fn func() error) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	err := fn()
	close(done)
	wg.Wait()
	_ = bar.Finish()
	return err
}
