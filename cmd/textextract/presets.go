package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/repository"
)

var presetKeywords []string

func init() {
	presetsSaveCmd.Flags().StringArrayVarP(&presetKeywords, "keyword", "k", nil, "keyword to store in the preset (repeatable)")
	_ = presetsSaveCmd.MarkFlagRequired("keyword")

	presetsCmd.AddCommand(presetsListCmd, presetsShowCmd, presetsSaveCmd, presetsDeleteCmd)
	rootCmd.AddCommand(presetsCmd)
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage named keyword lists",
	Long: `Manage named keyword lists.

Examples:
  textextract presets save monthly -k Salary -k Bonus -k Tax
  textextract presets list
  textextract extract --preset monthly payslip.pdf`,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		presets, err := a.session.Presets(cmd.Context())
		if err != nil {
			return err
		}
		if len(presets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No presets saved")
			return nil
		}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Name", "Keywords", "Updated"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		for _, p := range presets {
			table.Append([]string{p.Name, strings.Join(p.Keywords, ", "), formatTime(p.UpdatedAt)})
		}
		table.Render()
		return nil
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the keywords of one preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := repository.NewPresetRepository(a.db, a.logger).Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (created %s)\n", p.Name, formatTime(p.CreatedAt))
		for i, kw := range p.Keywords {
			fmt.Fprintf(out, "  %d. %s\n", i+1, kw)
		}
		return nil
	},
}

var presetsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save keywords under a name, replacing an existing preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, kw := range presetKeywords {
			if err := a.session.AddKeyword(cmd.Context(), kw); err != nil && !errors.Is(err, common.ErrDuplicateKeyword) {
				return err
			}
		}
		p, err := a.session.SavePreset(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %q with %d keywords\n", p.Name, len(p.Keywords))
		return nil
	},
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.DeletePreset(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %q\n", args[0])
		return nil
	},
}
