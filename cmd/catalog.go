package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jjenkins/clubs/internal/service"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect club catalogs",
	Long: `Inspect the club catalog served by the directory.

Examples:
  # Check a catalog file against the schema before deploying it
  ./clubs catalog validate clubs.yaml

  # List the embedded catalog
  ./clubs catalog list`,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a clubs YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		cat, err := loadCatalog(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d clubs OK\n", sourceName(path), cat.Len())
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List the clubs in a catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		cat, err := loadCatalog(path)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMEETS\tMEMBERS\tLEADERSHIP")
		for _, c := range cat.All() {
			fmt.Fprintf(w, "%s\t%s\t%s %s\t%d\t%s\n", c.ID, c.Name, c.MeetingDay, c.MeetingTime, c.Members, c.LeadershipEmail)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		stats := service.NewStatsService(cat).Calculate()
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "Total clubs:    %d\n", stats.TotalClubs)
		fmt.Fprintf(cmd.OutOrStdout(), "Total members:  %d\n", stats.TotalMembers)
		if stats.LargestClub != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Largest club:   %s (%d members)\n", stats.LargestClub, stats.LargestClubMembers)
		}
		if len(stats.MeetingDays) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Meeting days:   %s\n", strings.Join(stats.MeetingDays, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogListCmd)
}
