package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/pulseboard-backend/internal/client/calendar"
	"github.com/yungbote/pulseboard-backend/internal/client/dashapi"
)

func newCalendarCmd(opts *rootOptions) *cobra.Command {
	var (
		month    string
		platform string
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List a month of scheduled and published posts by day",
		Example: `  dashctl calendar
  dashctl calendar --month 2026-03 --platform instagram`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(true)
			if err != nil {
				return err
			}
			now := time.Now().In(s.loc)
			year, mon := now.Year(), now.Month()
			if month != "" {
				if year, mon, err = calendar.ParseMonth(month); err != nil {
					return fmt.Errorf("--month must be YYYY-MM: %w", err)
				}
			}

			start, end := calendar.MonthRange(year, mon, s.loc)
			ctx, cancel := withTimeout(cmd, opts)
			defer cancel()
			posts, err := s.client.Posts(ctx, dashapi.PostQuery{Start: start, End: end, Platform: platform})
			if err != nil {
				return describe(err)
			}

			view := calendar.Month(posts, year, mon, platform, s.loc)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d (%s) - %d posts\n", mon, year, s.loc, view.Total())
			w := table(out)
			for _, d := range view.Days {
				if len(d.Posts) == 0 {
					if all {
						fmt.Fprintf(w, "%s\t\t\t\n", d.Date.Format("Mon 02"))
					}
					continue
				}
				for i, p := range d.Posts {
					label := ""
					if i == 0 {
						label = d.Date.Format("Mon 02")
					}
					at, _ := p.CalendarTime()
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", label, at.In(s.loc).Format("15:04"), p.Platform, p.Status, snippet(p.Content, 48))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&platform, "platform", "", "only show one platform")
	cmd.Flags().BoolVar(&all, "all-days", false, "print days without posts too")
	return cmd
}
