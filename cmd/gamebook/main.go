package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/gamebook/internal/cli"
	"github.com/example/gamebook/internal/version"
	"github.com/example/gamebook/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "gamebook",
		Short:   "Read interactive gamebooks",
		Version: version.String(),
		Long: `gamebook reads branching adventure books.
Progress is saved per reader and book, so a session can be resumed later.`,
		SilenceUsage: true,
	}

	// Reading
	rootCmd.AddCommand(cli.ReadCmd())
	rootCmd.AddCommand(cli.ShowCmd())
	rootCmd.AddCommand(cli.ChooseCmd())
	rootCmd.AddCommand(cli.RestartCmd())
	rootCmd.AddCommand(cli.CloseCmd())
	rootCmd.AddCommand(cli.ProgressCmd())

	// Library
	rootCmd.AddCommand(cli.BooksCmd())

	// Server
	rootCmd.AddCommand(cli.ServeCmd())

	err := rootCmd.Execute()
	if cerr := wire.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
