package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/pulseboard-backend/internal/client/config"
	"github.com/yungbote/pulseboard-backend/internal/client/dashapi"
)

type rootOptions struct {
	configPath string
	baseURL    string
	timeout    time.Duration
}

// session is what every subcommand works with once flags and the config
// file have been merged.
type session struct {
	path   string
	cfg    config.Config
	loc    *time.Location
	client *dashapi.Client
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Command-line client for the pulseboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $HOME/"+config.FileName+")")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "API base URL, overrides the config file")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout")

	root.AddCommand(newLoginCmd(opts))
	root.AddCommand(newDashboardCmd(opts))
	root.AddCommand(newCalendarCmd(opts))
	root.AddCommand(newTrainCmd(opts))
	root.AddCommand(newInsightsCmd(opts))
	return root
}

func (o *rootOptions) open(requireToken bool) (*session, error) {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if requireToken && cfg.Token == "" {
		return nil, fmt.Errorf("not logged in; run 'dashctl login' first")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	client := dashapi.New(cfg.BaseURL, dashapi.WithToken(cfg.Token))
	return &session{path: path, cfg: cfg, loc: loc, client: client}, nil
}
