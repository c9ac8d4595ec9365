// Package categorize handles the description categorization command
package categorize

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/stmt-csv/cmd/root"
	"fjacquet/stmt-csv/internal/categorizer"
	"fjacquet/stmt-csv/internal/parsererror"

	"github.com/spf13/cobra"
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize [description...]",
	Short: "Show the category a description would be assigned",
	Long: `Categorize looks a transaction description up in the configured keyword rule
set and prints the category it gets, along with the keyword that matched.
Without a description it lists the categories in precedence order.

Example:
  stmt-csv categorize "STARBUCKS COFFEE #1234"`,
	Args: cobra.ArbitraryArgs,
	RunE: categorizeFunc,
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}

	cat, err := c.NewCategorizer()
	if err != nil {
		return &parsererror.StartupError{Stage: "rules", Err: err}
	}

	if len(args) == 0 {
		return List(cmd.OutOrStdout(), cat)
	}
	return Print(cmd.OutOrStdout(), cat, strings.Join(args, " "))
}

// List writes the category names in precedence order, then the default.
func List(w io.Writer, cat *categorizer.Categorizer) error {
	for i, name := range cat.Categories() {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i+1, name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "-\t%s\t(default)\n", cat.DefaultCategory())
	return err
}

// Print writes the category of description, and the keyword that matched
// if any, to w.
func Print(w io.Writer, cat *categorizer.Categorizer, description string) error {
	m, ok := cat.Match(description)
	if !ok {
		_, err := fmt.Fprintf(w, "%s\t(default)\n", cat.DefaultCategory())
		return err
	}
	_, err := fmt.Fprintf(w, "%s\t(keyword %q)\n", m.Category, m.Keyword)
	return err
}
