package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/pulseboard-backend/internal/client/training"
	"github.com/yungbote/pulseboard-backend/internal/domain/engagement"
)

func newTrainCmd(opts *rootOptions) *cobra.Command {
	var lookback int
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the engagement model on your post history",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			flow := training.New(s.client)
			defer flow.Close()
			flow.Subscribe(func(snap training.Snapshot) {
				if snap.State == training.StatePending {
					fmt.Fprintf(out, "Training on the last %d days...\n", snap.Lookback)
				}
			})

			ctx, cancel := withTimeout(cmd, opts)
			defer cancel()
			if _, err := flow.Trigger(ctx, engagement.LookbackPeriod(lookback)); err != nil {
				return err
			}
			snap, err := flow.Wait(ctx)
			if err != nil {
				return err
			}
			switch snap.State {
			case training.StateSuccess:
				printModel(out, snap.Model)
				return nil
			case training.StateEmpty:
				fmt.Fprintln(out, "Not enough published posts with analytics to train a model yet.")
				return nil
			default:
				return describe(snap.Err)
			}
		},
	}
	cmd.Flags().IntVar(&lookback, "lookback", int(engagement.Lookback90), "lookback period in days: 30, 90, 180 or 365")
	return cmd
}

func printModel(out io.Writer, m *engagement.Model) {
	fmt.Fprintf(out, "Model %s: %d posts, confidence %.0f%%\n", m.ModelID, m.SampleSize, m.Confidence*100)
	w := table(out)
	if len(m.ContentPatterns.HighEngagement) > 0 {
		fmt.Fprintln(w, "\nWORKS\t\t")
		for _, p := range m.ContentPatterns.HighEngagement {
			fmt.Fprintf(w, "%s=%s\t%s\t%+.0f%%\n", p.Kind, p.Value, pct(p.AvgEngagementRate), (p.RelativePerformance-1)*100)
		}
	}
	if len(m.TimingPatterns.BestWindows) > 0 {
		fmt.Fprintf(w, "\nBEST TIMES (%s)\t\t\n", m.TimingPatterns.Timezone)
		for _, tw := range m.TimingPatterns.BestWindows {
			fmt.Fprintf(w, "%s %02d:00-%02d:00\t%s\t%d posts\n", tw.DayOfWeek, tw.StartHour, tw.EndHour, pct(tw.AvgEngagementRate), tw.PostCount)
		}
	}
	if len(m.PerformanceFactors) > 0 {
		fmt.Fprintln(w, "\nFACTORS\t\t")
		for _, f := range m.PerformanceFactors {
			fmt.Fprintf(w, "%s\t%+.2f\t\n", f.Factor, f.Impact)
		}
	}
	_ = w.Flush()
}
