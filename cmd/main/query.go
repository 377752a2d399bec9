package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"market/analyzer/internal/client"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newNodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "node <id>",
		Short: "Print a node with its aggregated subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			unit, err := c.Node(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(unit)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a unit; children of a deleted category become orphans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.Delete(cmd.Context(), id)
		},
	}
}

func newSalesCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "List offers priced within a day of --date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asOf := time.Now().UTC()
			if date != "" {
				parsed, err := time.Parse(time.RFC3339, date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				asOf = parsed
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.Sales(cmd.Context(), asOf)
			if err != nil {
				return err
			}
			return printJSON(items)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "RFC 3339 reference time (default now)")
	return cmd
}

func newStatisticCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "statistic <id>",
		Short: "Print the price history of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			from, err := optionalTime(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			to, err := optionalTime(end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.Statistic(cmd.Context(), id, from, to)
			if err != nil {
				return err
			}
			return printJSON(items)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "RFC 3339 interval start (inclusive)")
	cmd.Flags().StringVar(&end, "end", "", "RFC 3339 interval end (inclusive)")
	return cmd
}

func newClient() (client.AnalyzerClient, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return client.NewAnalyzerClient(cfg.Client), nil
}

func optionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
