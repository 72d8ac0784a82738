package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"immunizetrack/internal/core"
)

func newListCmd(a *app) *cobra.Command {
	var (
		q      string
		fields []string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List records of a page filtered by a search query",
		Long: `Lists patients, users, vaccines, activities, children or vaccinations.
The query matches case-insensitively against the page's search fields;
--fields narrows the fields searched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()
			listing, err := svc.List(cmd.Context(), kind, q, fields...)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), listing)
			}
			return writeListing(cmd, listing)
		},
	}
	cmd.Flags().StringVarP(&q, "query", "q", "", "search text")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "search fields (default: the page's configured fields)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the listing as JSON")
	return cmd
}

func writeListing(cmd *cobra.Command, listing core.Listing) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tLABEL\tSEVERITY")
	for _, row := range listing.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.ID, row.Category, row.Style.Label, row.Style.Severity)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d of %d %s (fields: %s)\n",
		listing.Matched, listing.Total, listing.Kind, strings.Join(listing.Fields, ","))
	return err
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <kind>",
		Short: "Print the category counts of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()
			summary, err := svc.Summary(cmd.Context(), kind)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Print a single record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()
			row, err := svc.Find(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), row)
		},
	}
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()
			return writeJSON(cmd.OutOrStdout(), svc.Dashboard(cmd.Context()))
		},
	}
}

func newPortalCmd(a *app) *cobra.Command {
	var (
		parent   string
		child    string
		q        string
		upcoming bool
	)
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Print a child's vaccination history as the parent portal shows it",
		Long: `Without --child the first child visible to --parent is selected. A
--child that does not resolve yields an empty view. --upcoming prints only the
due and overdue entries of the child's full history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()
			children, err := svc.Children(cmd.Context(), parent)
			if err != nil {
				return err
			}
			sel := svc.DefaultSelection()
			switch {
			case child != "":
				sel = svc.SelectChild(child)
			case parent != "" && len(children) > 0:
				sel = svc.SelectChild(children[0].ID)
			case parent != "":
				sel = svc.SelectChild("")
			}
			if upcoming {
				return writeJSON(cmd.OutOrStdout(), svc.Upcoming(cmd.Context(), sel))
			}
			return writeJSON(cmd.OutOrStdout(), svc.Portal(cmd.Context(), sel, q))
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "parent user id")
	cmd.Flags().StringVar(&child, "child", "", "child id")
	cmd.Flags().StringVarP(&q, "query", "q", "", "vaccination search text")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "list due and overdue vaccinations only")
	return cmd
}
