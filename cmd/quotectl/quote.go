package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coverly/quotes/internal/quote"
)

var listCoverageTypes []string

func init() {
	quoteListCmd.Flags().StringSliceVarP(&listCoverageTypes, "coverage", "", nil, "filter by coverage type, e.g. CAR,HOME")

	quoteCmd.AddCommand(quoteListCmd, quoteRemoveCmd)
	rootCmd.AddCommand(quoteCmd)
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "inspect and remove quotes",
}

var quoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "list live quotes, newest first",
	RunE:  doQuoteList,
}

var quoteRemoveCmd = &cobra.Command{
	Use:   "rm ID...",
	Short: "soft-delete quotes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  doQuoteRemove,
}

func doQuoteList(cmd *cobra.Command, args []string) error {
	coverageTypes := make([]quote.CoverageType, 0, len(listCoverageTypes))
	for _, s := range listCoverageTypes {
		c, err := quote.ParseCoverageType(s)
		if err != nil {
			return err
		}
		coverageTypes = append(coverageTypes, c)
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	quotes, err := a.Repo.ListQuotes(cmd.Context(), coverageTypes)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOVERAGE\tPRICE\tPROVIDER")
	for _, q := range quotes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", q.ID, q.CoverageType, q.Price.StringFixed(2), q.ProviderName)
	}
	return w.Flush()
}

func doQuoteRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var total, failed int
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err == nil {
			err = a.Quotes.Delete(cmd.Context(), id)
		}
		if err != nil {
			failed += 1
			fmt.Fprintf(cmd.ErrOrStderr(), "[error] remove quote %s: %s\n", arg, err)
			continue
		}
		total += 1
		fmt.Fprintf(cmd.OutOrStdout(), "removed quote %d\n", id)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "total: %d\nerrors: %d\n", total, failed)
	if failed > 0 {
		return fmt.Errorf("%d quotes not removed", failed)
	}
	return nil
}
