package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newInsightsCmd(opts *rootOptions) *cobra.Command {
	var unread bool
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "List insights derived from your engagement model",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(true)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, opts)
			defer cancel()
			list, err := s.client.Insights(ctx, unread)
			if err != nil {
				return describe(err)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No insights.")
				return nil
			}
			w := table(out)
			fmt.Fprintln(w, "ID\tPRIORITY\tTYPE\tTITLE\tSTATUS")
			for _, in := range list {
				status := "new"
				switch {
				case in.IsApplied:
					status = "applied"
				case in.IsRead:
					status = "read"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", in.ID, in.Priority, in.Type, snippet(in.Title, 60), status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread insights")
	cmd.AddCommand(newInsightMarkCmd(opts, "read", "Mark an insight as read"))
	cmd.AddCommand(newInsightMarkCmd(opts, "apply", "Mark an insight as applied"))
	return cmd
}

func newInsightMarkCmd(opts *rootOptions, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("insight id must be a UUID: %w", err)
			}
			s, err := opts.open(true)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, opts)
			defer cancel()
			if action == "apply" {
				_, err = s.client.ApplyInsight(ctx, id)
			} else {
				_, err = s.client.MarkInsightRead(ctx, id)
			}
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Insight %s marked %s.\n", id, map[string]string{"read": "read", "apply": "applied"}[action])
			return nil
		},
	}
}
