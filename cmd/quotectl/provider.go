package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listAllProviders bool

func init() {
	providerListCmd.Flags().BoolVarP(&listAllProviders, "all", "a", false, "include deleted providers")

	providerCmd.AddCommand(providerAddCmd, providerListCmd, providerRemoveCmd)
	rootCmd.AddCommand(providerCmd)
}

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "manage insurance providers",
}

var providerAddCmd = &cobra.Command{
	Use:   "add NAME...",
	Short: "add providers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  doProviderAdd,
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list providers",
	RunE:  doProviderList,
}

var providerRemoveCmd = &cobra.Command{
	Use:   "rm ID...",
	Short: "soft-delete providers and clear cached quotes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  doProviderRemove,
}

func doProviderAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, name := range args {
		id, err := a.Repo.CreateProvider(cmd.Context(), name, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("add %q: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added provider %d %s\n", id, name)
	}
	return nil
}

func doProviderList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	providers, err := a.Repo.ListProviders(cmd.Context(), listAllProviders)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tDELETED")
	for _, p := range providers {
		deleted := "-"
		if p.DeletedAt != nil {
			deleted = p.DeletedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.CreatedAt.Format(time.RFC3339), deleted)
	}
	return w.Flush()
}

func doProviderRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var total, failed int
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err == nil {
			err = a.Repo.DeleteProvider(cmd.Context(), id, time.Now().UTC())
		}
		if err != nil {
			failed += 1
			fmt.Fprintf(cmd.ErrOrStderr(), "[error] remove provider %s: %s\n", arg, err)
			continue
		}
		total += 1
		fmt.Fprintf(cmd.OutOrStdout(), "removed provider %d\n", id)
	}

	// cached views carry provider names and liveness
	if total > 0 {
		if err := a.Cache.ClearAll(cmd.Context()); err != nil {
			return fmt.Errorf("cache.ClearAll: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "total: %d\nerrors: %d\n", total, failed)
	if failed > 0 {
		return fmt.Errorf("%d providers not removed", failed)
	}
	return nil
}
