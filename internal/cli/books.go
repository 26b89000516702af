package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BooksCmd returns the books command
func BooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse the library",
		Long:  "List the books in the library and check their content.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wireLibrary().List(cmd.Context())
			return err
		},
	}

	cmd.AddCommand(booksListCmd())
	cmd.AddCommand(booksValidateCmd())

	return cmd
}

func booksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wireLibrary().List(cmd.Context())
			return err
		},
	}
}

func booksValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [book-id]",
		Short: "Check a book's entries and choices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			report, err := wireLibrary().Validate(cmd.Context(), bookID)
			if err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("book %d is not valid", bookID)
			}
			return nil
		},
	}
}
