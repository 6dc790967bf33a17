package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/layout"
	"github.com/lixenwraith/folio/logging"
	"github.com/lixenwraith/folio/theme"
)

// ErrCheckFailed is returned by check when any page fails to load
var ErrCheckFailed = errors.New("site check failed")

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [site-dir]",
		Short: "Validate every page of a site",
		Long:  `Parses each .page file and reports its blocks, links and how many glyphs join the pointer effect.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, args)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer log.Sync()

			m := content.NewManager(cfg.Site.Dir, log)
			if err := m.Discover(); err != nil {
				return err
			}

			lo := layout.DefaultOptions()
			lo.CellWidth = cfg.Render.CellWidth
			lo.CellHeight = cfg.Render.CellHeight
			lo.MaxWidth = cfg.Render.MaxWidth
			lo.Logger = log

			out := cmd.OutOrStdout()
			failed := 0
			for _, slug := range m.Slugs() {
				p, err := m.Load(slug)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL  %-20s %v\n", slug, err)
					continue
				}
				st := layout.Build(p, cfg.Render.MaxWidth, lo).Stats()
				fmt.Fprintf(out, "ok    %-20s %d blocks, %d links, %d dates, %d animated glyphs, %d skipped\n",
					slug, len(p.Blocks), len(p.Links()), len(p.Dates()), st.Animated, st.Skipped)
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d page(s)", ErrCheckFailed, failed)
			}
			return nil
		},
	}
}

func newThemeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [auto|light|dark|toggle|info]",
		Short:     "Show or change the saved theme preference",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"auto", "light", "dark", "toggle", "info"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, nil)
			if err != nil {
				return err
			}
			path := cfg.Theme.StateFile
			if path == "" {
				path = theme.DefaultStatePath()
			}
			m := theme.NewManager(cfg.Theme.Config, theme.FileStore{Path: path}, nil, false, nil)

			action := "info"
			if len(args) > 0 {
				action = args[0]
			}
			switch action {
			case "auto":
				m.EnableAuto()
			case "toggle":
				m.Toggle()
			case "light", "dark":
				if err := m.Set(theme.Theme(action), true); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", m.Icon(), m.Title())
			return nil
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, nil)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), strings.TrimRight(string(data), "\n")+"\n")
			return nil
		},
	}
}
