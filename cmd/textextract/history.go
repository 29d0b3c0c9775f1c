package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	historyCmd.AddCommand(historyListCmd, historyRemoveCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or edit the keyword history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List previously used keywords, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		keywords, err := a.session.History(cmd.Context())
		if err != nil {
			return err
		}
		if len(keywords) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No keywords in history")
			return nil
		}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"#", "Keyword"})
		table.SetBorder(false)
		for i, kw := range keywords {
			table.Append([]string{strconv.Itoa(i + 1), kw})
		}
		table.Render()
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <keyword>",
	Short: "Forget one keyword",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.history().Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from history\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every keyword",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.history().Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return nil
	},
}
