package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/lixenwraith/folio/config"
	"github.com/lixenwraith/folio/logging"
	"github.com/lixenwraith/folio/theme"
	"github.com/lixenwraith/folio/viewer"
)

// ErrNoTerminal is returned when the viewer is started without a TTY
var ErrNoTerminal = errors.New("folio needs an interactive terminal")

type options struct {
	configPath string
	verbose    bool
	mute       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "folio [site-dir]",
		Short: "Browse a folio site in the terminal",
		Long: `Shows the .page files of a site directory in the terminal.
Letters of headings and links drift away from the mouse pointer and settle back when it leaves.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViewer(cmd.Context(), opts, args)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (YAML)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to the log file")
	flags.BoolVar(&opts.mute, "mute", false, "start with sound muted")

	root.AddCommand(newCheckCmd(opts), newThemeCmd(opts), newConfigCmd(opts))
	return root
}

// loadConfig resolves file, environment, flags and the optional site argument in that order
func loadConfig(opts *options, args []string) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if len(args) > 0 {
		cfg.Site.Dir = args[0]
	}
	if opts.verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runViewer(ctx context.Context, opts *options, args []string) (err error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNoTerminal
	}

	cfg, err := loadConfig(opts, args)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	// Restore the terminal before reporting a crash so the trace stays readable
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			log.Error("viewer crashed", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			fmt.Fprintf(os.Stderr, "folio crashed: %v\n%s\n", r, debug.Stack())
			err = fmt.Errorf("crashed: %v", r)
		}
	}()

	app, err := viewer.New(cfg, screen,
		viewer.WithLogger(log),
		viewer.WithMute(opts.mute),
		viewer.WithSystemDark(theme.SystemPrefersDark(os.Getenv)))
	if err != nil {
		screen.Fini()
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}
