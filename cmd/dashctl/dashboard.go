package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/pulseboard-backend/internal/client/dashapi"
	"github.com/yungbote/pulseboard-backend/internal/domain"
)

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show headline stats, revenue and upcoming posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(true)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, opts)
			defer cancel()

			var (
				stats    *dashapi.DashboardStats
				summary  *dashapi.MonetizationSummary
				roi      []dashapi.PlatformROI
				upcoming []domain.Post
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) { stats, err = s.client.DashboardStats(gctx, days); return })
			g.Go(func() (err error) { summary, err = s.client.Monetization(gctx, days); return })
			g.Go(func() (err error) { roi, err = s.client.PlatformROI(gctx, days); return })
			g.Go(func() (err error) { upcoming, err = s.client.ScheduledPosts(gctx, 5); return })
			if err := g.Wait(); err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Last %d days (since %s)\n\n", stats.RangeDays, stats.Since.In(s.loc).Format("2006-01-02"))
			w := table(out)
			fmt.Fprintf(w, "Posts\t%d\n", stats.TotalPosts)
			fmt.Fprintf(w, "Impressions\t%d\n", stats.Impressions)
			fmt.Fprintf(w, "Reach\t%d\n", stats.Reach)
			fmt.Fprintf(w, "Interactions\t%d\n", stats.Interactions)
			fmt.Fprintf(w, "Engagement rate\t%s\n", pct(stats.EngagementRate))
			fmt.Fprintf(w, "Followers gained\t%d\n", stats.FollowersGained)
			fmt.Fprintf(w, "Accounts\t%d (avg health %d)\n", stats.ConnectedAccounts, stats.AvgHealthScore)
			fmt.Fprintf(w, "Unread insights\t%d\n", stats.UnreadInsights)
			fmt.Fprintf(w, "Revenue\t%s (paid %s, pending %s)\n",
				money(summary.TotalCents, summary.Currency), money(summary.PaidCents, summary.Currency), money(summary.PendingCents, summary.Currency))
			if err := w.Flush(); err != nil {
				return err
			}

			if len(roi) > 0 {
				fmt.Fprintln(out, "\nPlatforms")
				w = table(out)
				fmt.Fprintln(w, "PLATFORM\tPOSTS\tIMPRESSIONS\tENGAGEMENT\tREVENUE\tRPM")
				for _, r := range roi {
					fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%.2f\n",
						r.Platform, r.Posts, r.Impressions, pct(r.EngagementRate), money(r.RevenueCents, r.Currency), r.RevenuePerMille/100)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			if len(upcoming) > 0 {
				sort.SliceStable(upcoming, func(i, j int) bool {
					a, _ := upcoming[i].CalendarTime()
					b, _ := upcoming[j].CalendarTime()
					return a.Before(b)
				})
				fmt.Fprintln(out, "\nUpcoming")
				w = table(out)
				for _, p := range upcoming {
					at, _ := p.CalendarTime()
					fmt.Fprintf(w, "%s\t%s\t%s\n", at.In(s.loc).Format("Mon Jan 2 15:04"), p.Platform, snippet(p.Content, 48))
				}
				return w.Flush()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "range", 0, "range in days: 7, 30 or 90 (default: your dashboard preference)")
	return cmd
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
