package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/pulseboard-backend/internal/client/dashapi"
)

func withTimeout(cmd *cobra.Command, opts *rootOptions) (context.Context, context.CancelFunc) {
	if opts.timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), opts.timeout)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// describe turns API errors into something readable on a terminal.
func describe(err error) error {
	var re *dashapi.RequestError
	if !errors.As(err, &re) {
		return err
	}
	if re.Status == 401 {
		return fmt.Errorf("%s (try 'dashctl login')", re.Message)
	}
	if len(re.Fields) == 0 {
		return errors.New(re.Message)
	}
	parts := make([]string, 0, len(re.Fields))
	for _, f := range re.Fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	return fmt.Errorf("%s\n  %s", re.Message, strings.Join(parts, "\n  "))
}

func money(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}

func pct(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}
