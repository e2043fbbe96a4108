package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/billmal071/olsearch/internal/db"
	"github.com/billmal071/olsearch/internal/openlibrary"
	"github.com/billmal071/olsearch/internal/tui"
)

var savedCmd = &cobra.Command{
	Use:     "saved",
	Aliases: []string{"bookmarks", "bm"},
	Short:   "Manage saved books",
	Long: `Keep Open Library works for later.

Examples:
  olsearch saved                           List saved books
  olsearch saved add OL27448W              Save a work by key
  olsearch saved add /works/OL27448W -n "read next"
  olsearch saved note 3 "lent to Sam"      Update the note of saved book #3
  olsearch saved remove 3                  Remove by ID
  olsearch saved remove OL27448W           Remove by work key`,
	RunE: runSavedList,
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved books",
	RunE:  runSavedList,
}

var savedAddCmd = &cobra.Command{
	Use:   "add [work-key]",
	Short: "Save a book by its Open Library work key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, _ := cmd.Flags().GetString("note")
		return addSavedBook(cmd.Context(), args[0], note)
	},
}

var savedRemoveCmd = &cobra.Command{
	Use:     "remove [id|work-key]",
	Aliases: []string{"rm"},
	Short:   "Remove a saved book",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := lookupSavedBook(args[0])
		if err != nil {
			return err
		}
		if err := db.DeleteSavedBook(book.ID); err != nil {
			return fmt.Errorf("failed to remove saved book: %w", err)
		}
		Successf("Removed: %s", book.Title)
		return nil
	},
}

var savedNoteCmd = &cobra.Command{
	Use:   "note [id|work-key] [text]",
	Short: "Set the note of a saved book",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := lookupSavedBook(args[0])
		if err != nil {
			return err
		}
		note := strings.Join(args[1:], " ")
		if err := db.UpdateSavedBookNotes(book.ID, note); err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		Successf("Note updated for: %s", book.Title)
		return nil
	},
}

func init() {
	savedAddCmd.Flags().StringP("note", "n", "", "add a note to the saved book")

	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedAddCmd)
	savedCmd.AddCommand(savedRemoveCmd)
	savedCmd.AddCommand(savedNoteCmd)
}

func runSavedList(cmd *cobra.Command, args []string) error {
	books, err := db.ListSavedBooks()
	if err != nil {
		return fmt.Errorf("failed to list saved books: %w", err)
	}

	if len(books) == 0 {
		fmt.Fprintln(out(), "No saved books.")
		fmt.Fprintln(out(), "\nTo save a book:")
		fmt.Fprintln(out(), "  olsearch saved add <work-key>")
		return nil
	}

	fmt.Fprintf(out(), "Saved books (%d):\n\n", len(books))

	for _, b := range books {
		fmt.Fprintf(out(), "  %d. %s\n", b.ID, tui.Truncate(b.Title, 50))

		var details []string
		if b.Authors != "" {
			details = append(details, tui.Truncate(b.Authors, 30))
		}
		if b.FirstPublishYear != 0 {
			details = append(details, strconv.Itoa(b.FirstPublishYear))
		}
		if b.Languages != "" {
			details = append(details, b.Languages)
		}
		if len(details) > 0 {
			fmt.Fprintf(out(), "     %s\n", strings.Join(details, " | "))
		}

		fmt.Fprintf(out(), "     Key: %s\n", b.WorkKey)

		if b.Notes != "" {
			fmt.Fprintf(out(), "     Note: %s\n", b.Notes)
		}

		fmt.Fprintf(out(), "     Added: %s\n", b.CreatedAt.Format("2006-01-02"))
		fmt.Fprintln(out())
	}

	return nil
}

// addSavedBook looks the work up on Open Library and saves it. When the
// lookup fails a placeholder entry is saved with just the key.
func addSavedBook(ctx context.Context, key, note string) error {
	key = db.NormalizeWorkKey(key)
	if key == "" {
		return fmt.Errorf("work key is required")
	}

	if db.SavedBookExists(key) {
		fmt.Fprintln(out(), "Book is already saved.")
		return nil
	}

	Printf("Fetching book info...\n")

	client := openlibrary.NewDefaultClient(openlibrary.DefaultResource, logger)
	lookupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	params := openlibrary.DefaultSearchParams()
	params.Query = "key:" + key
	params.Limit = 1
	params.Fields = []string{"key", "title", "author_name", "first_publish_year", "language", "edition_count"}

	raw, err := client.SearchRaw(lookupCtx, params)
	docs := openlibrary.Summarize(raw).Docs
	if err != nil || len(docs) == 0 {
		book := &db.SavedBook{
			WorkKey: key,
			Title:   "Unknown (" + key + ")",
			Notes:   note,
		}
		if err := db.SaveBook(book); err != nil {
			return fmt.Errorf("failed to save book: %w", err)
		}
		Successf("Saved: %s", book.Title)
		fmt.Fprintln(out(), "Note: Could not fetch book info. Search for this book to get more details.")
		return nil
	}

	doc := docs[0]
	if doc.Key == "" {
		doc.Key = key
	}
	return saveDoc(doc, note)
}

// saveDoc stores a search result as a saved book
func saveDoc(doc openlibrary.Doc, note string) error {
	if db.SavedBookExists(doc.Key) {
		fmt.Fprintln(out(), "Book is already saved.")
		return nil
	}

	book := &db.SavedBook{
		WorkKey:          db.NormalizeWorkKey(doc.Key),
		Title:            doc.Title,
		Authors:          doc.AuthorList(),
		FirstPublishYear: doc.FirstPublishYear,
		Languages:        strings.Join(doc.Languages, ","),
		Notes:            note,
	}
	if book.Title == "" {
		book.Title = "Unknown (" + book.WorkKey + ")"
	}

	if err := db.SaveBook(book); err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}

	Successf("Saved: %s", book.Title)
	return nil
}

// lookupSavedBook resolves a numeric ID or a work key
func lookupSavedBook(ref string) (*db.SavedBook, error) {
	var (
		book *db.SavedBook
		err  error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		book, err = db.GetSavedBook(id)
	} else {
		book, err = db.GetSavedBookByKey(ref)
	}
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("saved book not found: %s", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up saved book: %w", err)
	}
	return book, nil
}
