package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/fabtools/inchify"
	"github.com/fabtools/inchify/config"
	"github.com/fabtools/inchify/observability"
	"github.com/fabtools/inchify/report"
	"github.com/fabtools/inchify/scripting"
)

type options struct {
	input      string
	output     string
	gap        float64
	rulesPath  string
	reportPath string
	logDir     string
	noViewer   bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "inchify: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "inchify: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	cfg, err := config.Load()
	if err != nil {
		return options{}, err
	}

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: inchify [flags] [input.pdf [output.pdf]]\n")
		flag.PrintDefaults()
	}
	gap := flag.Float64("gap", cfg.GapThreshold, "Maximum horizontal gap between merged numeric spans")
	rules := flag.String("rules", cfg.RulesPath, "JavaScript rule hook defining decide(token, page)")
	reportPath := flag.String("report", cfg.ReportPath, "Write an HTML conversion report to this path")
	logDir := flag.String("logdir", cfg.LogDir, "Directory for the per-run conversion log")
	noViewer := flag.Bool("no-viewer", cfg.NoViewer, "Do not open the output in the default viewer")
	flag.Parse()

	if flag.NArg() > 2 {
		flag.Usage()
		return options{}, fmt.Errorf("too many arguments")
	}
	opts := options{
		input:      cfg.Input,
		output:     cfg.Output,
		gap:        *gap,
		rulesPath:  *rules,
		reportPath: *reportPath,
		logDir:     *logDir,
		noViewer:   *noViewer,
	}
	if flag.NArg() >= 1 {
		opts.input = flag.Arg(0)
	}
	if flag.NArg() == 2 {
		opts.output = flag.Arg(1)
	}
	if opts.gap <= 0 {
		return options{}, fmt.Errorf("gap threshold must be positive, got %v", opts.gap)
	}
	return opts, nil
}

func run(opts options) error {
	// The log is an operational side channel: losing it must not stop
	// the conversion.
	var log observability.Logger
	fileLog, err := observability.NewRunLog(opts.logDir, observability.LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inchify: log file unavailable: %v\n", err)
		log = observability.NopLogger{}
	} else {
		defer fileLog.Close()
		log = fileLog
	}

	var rules *scripting.Rules
	if opts.rulesPath != "" {
		rules, err = scripting.Load(opts.rulesPath)
		if err != nil {
			return err
		}
	}
	var rep *report.Report
	if opts.reportPath != "" {
		rep = report.New(opts.input, opts.output)
	}

	processor := inchify.NewProcessor(inchify.Options{
		GapThreshold: opts.gap,
		Rules:        rules,
		Report:       rep,
		Logger:       log,
	})
	if err := processor.ProcessFile(context.Background(), opts.input, opts.output); err != nil {
		return err
	}

	if rep != nil {
		if err := rep.WriteHTML(opts.reportPath); err != nil {
			log.Warn("report not written", observability.Error("err", err))
		}
	}
	if !opts.noViewer {
		if err := openViewer(opts.output); err != nil {
			log.Info("output saved but viewer launch failed", observability.Error("err", err))
		}
	}
	return nil
}

// openViewer opens the file with the host's default PDF viewer.
func openViewer(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
