package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/gamebook/internal/config"
)

// readerFlags holds the flags shared by every reading command.
type readerFlags struct {
	user string
}

func (f *readerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.user, "user", "u", "", "Reader id (defaults to the local profile)")
}

// resolve returns the reader id from --user or the local profile.
func (f *readerFlags) resolve() (string, error) {
	if f.user != "" {
		return f.user, nil
	}
	dir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	profile, err := config.EnsureProfile(dir)
	if err != nil {
		return "", fmt.Errorf("failed to load reader profile: %w", err)
	}
	return profile.ReaderID, nil
}

// parseBookID parses a non-negative book id argument.
func parseBookID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid book id %q", arg)
	}
	return id, nil
}

// rememberBook records bookID as the last book opened. Failures are ignored.
func rememberBook(bookID int) {
	dir, err := config.DataDir()
	if err != nil {
		return
	}
	profile, err := config.EnsureProfile(dir)
	if err != nil || profile.LastBook == bookID {
		return
	}
	profile.LastBook = bookID
	_ = config.SaveProfile(dir, profile)
}

// lastBook returns the book recorded by rememberBook.
func lastBook() (int, error) {
	dir, err := config.DataDir()
	if err != nil {
		return 0, err
	}
	profile, err := config.EnsureProfile(dir)
	if err != nil {
		return 0, err
	}
	if profile.LastBook == 0 {
		return 0, fmt.Errorf("no book given and no book read before")
	}
	return profile.LastBook, nil
}

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	var flags readerFlags

	cmd := &cobra.Command{
		Use:   "show [book-id]",
		Short: "Show the current entry of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			userID, err := flags.resolve()
			if err != nil {
				return err
			}
			if _, err := wireReader().Show(cmd.Context(), userID, bookID); err != nil {
				return err
			}
			rememberBook(bookID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// ChooseCmd returns the choose command
func ChooseCmd() *cobra.Command {
	var flags readerFlags

	cmd := &cobra.Command{
		Use:   "choose [book-id] [choice]",
		Short: "Take a choice by number or target entry id",
		Long: `Take one of the choices offered by the current entry.

Examples:
  gamebook choose 1 2
  gamebook choose 1 CAVE_ENTRANCE`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			userID, err := flags.resolve()
			if err != nil {
				return err
			}
			_, err = wireReader().Choose(cmd.Context(), userID, bookID, args[1])
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// RestartCmd returns the restart command
func RestartCmd() *cobra.Command {
	var flags readerFlags

	cmd := &cobra.Command{
		Use:   "restart [book-id]",
		Short: "Clear progress and return to the start of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			userID, err := flags.resolve()
			if err != nil {
				return err
			}
			_, err = wireReader().Restart(cmd.Context(), userID, bookID)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// CloseCmd returns the close command
func CloseCmd() *cobra.Command {
	var flags readerFlags

	cmd := &cobra.Command{
		Use:   "close [book-id]",
		Short: "Close a reading session",
		Long:  "Close a reading session. Progress of a finished adventure is cleared.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			userID, err := flags.resolve()
			if err != nil {
				return err
			}
			return wireReader().Close(cmd.Context(), userID, bookID)
		},
	}
	flags.register(cmd)
	return cmd
}

// ProgressCmd returns the progress command
func ProgressCmd() *cobra.Command {
	var flags readerFlags

	cmd := &cobra.Command{
		Use:   "progress [book-id]",
		Short: "Show saved progress for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			userID, err := flags.resolve()
			if err != nil {
				return err
			}
			_, err = wireReader().Progress(cmd.Context(), userID, bookID)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// ReadCmd returns the interactive read command
func ReadCmd() *cobra.Command {
	var flags readerFlags

	cmd := &cobra.Command{
		Use:   "read [book-id]",
		Short: "Read a book interactively",
		Long: `Open a book in the interactive terminal reader.
Without a book id the last book opened is resumed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bookID int
			var err error
			if len(args) == 1 {
				bookID, err = parseBookID(args[0])
			} else {
				bookID, err = lastBook()
			}
			if err != nil {
				return err
			}
			userID, err := flags.resolve()
			if err != nil {
				return err
			}
			rememberBook(bookID)
			return runTUI(cmd.Context(), userID, bookID)
		},
	}
	flags.register(cmd)
	return cmd
}
