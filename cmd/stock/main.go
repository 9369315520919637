package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"IPOWatch/internal/di"
	"IPOWatch/internal/domain/models"
	"IPOWatch/pkg/config"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2

	defaultConfigPath = "config/config.yaml"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line. Only flags the user actually set
// override the loaded configuration.
type options struct {
	mode       string
	configPath string
	set        map[string]bool

	token         string
	start         string
	end           string
	at            string
	intervalHours float64
	rawOut        string
	monthlyOut    string
	sendKey       string
	runNow        bool
	serve         bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitConfig
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitConfig
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, models.ErrConfig) {
			return exitConfig
		}
		return exitFailed
	}
	defer cleanup()

	switch opts.mode {
	case "schedule":
		if err := app.RunSchedule(ctx); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitFailed
		}
		return exitOK
	default:
		res, err := app.RunOnce(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitFailed
		}
		if err := writeSummary(stdout, res); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitFailed
		}
		return exitOK
	}
}

// parseArgs accepts `ipo [once|schedule] [flags]`. The mode defaults to once.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	if len(args) == 0 {
		usage(stderr)
		return nil, errors.New("missing command")
	}
	if args[0] != "ipo" {
		usage(stderr)
		return nil, fmt.Errorf("unknown command %q", args[0])
	}
	args = args[1:]

	opts := &options{mode: "once", set: map[string]bool{}}
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		opts.mode = args[0]
		args = args[1:]
	}
	if opts.mode != "once" && opts.mode != "schedule" {
		return nil, fmt.Errorf("unknown mode %q (want once or schedule)", opts.mode)
	}

	fs := flag.NewFlagSet("stock ipo "+opts.mode, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	fs.StringVar(&opts.token, "token", "", "TuShare token (env TUSHARE_TOKEN)")
	fs.StringVar(&opts.start, "start", "", "window start YYYYMMDD (default: five years back)")
	fs.StringVar(&opts.end, "end", "", "window end YYYYMMDD (default: today)")
	fs.StringVar(&opts.at, "at", "", "run daily at HH:MM local time")
	fs.Float64Var(&opts.intervalHours, "interval-hours", 24, "hours between passes in interval mode")
	fs.StringVar(&opts.rawOut, "raw-out", "", "raw CSV output path")
	fs.StringVar(&opts.monthlyOut, "monthly-out", "", "monthly CSV output path")
	fs.StringVar(&opts.sendKey, "send-key", "", "Server酱 send key (env SCT_SENDKEY)")
	fs.BoolVar(&opts.runNow, "run-now", false, "in daily_at mode, run a pass before the first wait")
	fs.BoolVar(&opts.serve, "serve", false, "serve status and metrics endpoints in schedule mode")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// loadConfig applies flag > environment > YAML > defaults, then validates.
func loadConfig(opts *options) (*config.Config, error) {
	path := opts.configPath
	if !opts.set["config"] {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrConfig, err)
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, opts *options) {
	if opts.set["token"] {
		cfg.TuShare.Token = strings.TrimSpace(opts.token)
	}
	if opts.set["send-key"] {
		cfg.Push.SendKey = strings.TrimSpace(opts.sendKey)
	}
	if opts.set["start"] {
		cfg.Window.Start = opts.start
	}
	if opts.set["end"] {
		cfg.Window.End = opts.end
	}
	if opts.set["raw-out"] {
		cfg.Output.RawPath = opts.rawOut
	}
	if opts.set["monthly-out"] {
		cfg.Output.MonthlyPath = opts.monthlyOut
	}
	if opts.set["interval-hours"] {
		cfg.Schedule.IntervalHours = opts.intervalHours
		cfg.Schedule.Mode = config.ScheduleInterval
	}
	// --at wins over --interval-hours.
	if opts.set["at"] {
		cfg.Schedule.At = opts.at
		cfg.Schedule.Mode = config.ScheduleDailyAt
	}
	if opts.runNow {
		cfg.Schedule.RunOnStart = true
	}
	if opts.serve {
		cfg.Server.Enabled = true
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: stock ipo [once|schedule] [--token T] [--start YYYYMMDD] [--end YYYYMMDD]")
	fmt.Fprintln(w, "                 [--at HH:MM | --interval-hours H] [--run-now] [--serve]")
	fmt.Fprintln(w, "                 [--config PATH] [--raw-out PATH] [--monthly-out PATH] [--send-key KEY]")
}
