package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sherine-k/bankqueue/pkg/chart"
	"github.com/sherine-k/bankqueue/pkg/config"
	"github.com/sherine-k/bankqueue/pkg/eventlog"
	"github.com/sherine-k/bankqueue/pkg/metrics"
	"github.com/sherine-k/bankqueue/pkg/simulation"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	defaultInputFile = "data/input.json"
	pushJobName      = "bank_queue"
)

type runOptions struct {
	logFile      string
	logLevel     string
	openingHours string
	showChart    bool
	metricsAddr  string
	pushURL      string
}

// NewRootCmd builds the bank-queue command tree
func NewRootCmd() *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "bank-queue [input.json]",
		Short: "Bank service counter simulator",
		Long: `A CLI tool that simulates clients queueing at bank departments.

This tool reads a roster of departments (with their number of employees) and
clients (with their service time, priority and departments to visit), serves
every client concurrently while never exceeding a department's employees, and
logs every arrival and departure to the console and to a log file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, args, opts)
		},
	}
	addRunFlags(rootCmd, opts)

	runCmd := &cobra.Command{
		Use:          "run [input.json]",
		Short:        "Run the bank simulation",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, args, opts)
		},
	}
	addRunFlags(runCmd, opts)

	rootCmd.AddCommand(runCmd, newSessionsCmd())
	return rootCmd
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.logFile, "log-file", "bank.log", "Path of the append-only event log")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Diagnostic log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.openingHours, "opening-hours", "", "Cron expression; wait for the next opening before serving")
	cmd.Flags().BoolVar(&opts.showChart, "chart", false, "Show department occupancy chart and summary after the run")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics during the run (e.g. :9090)")
	cmd.Flags().StringVar(&opts.pushURL, "push-url", "", "Pushgateway URL to push metrics to after the run")
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func runSimulation(cmd *cobra.Command, args []string, opts *runOptions) error {
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)
	}
	logrus.SetLevel(level)

	inputFile := defaultInputFile
	if len(args) == 1 {
		inputFile = args[0]
	}

	// Load configuration before any event is written
	roster, err := config.LoadConfig(inputFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logrus.Infof("loaded %s: %d department(s), %d client(s)", inputFile, len(roster.Departments), len(roster.Clients))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.openingHours != "" {
		hours, err := simulation.ParseOpeningHours(opts.openingHours)
		if err != nil {
			return err
		}
		logrus.Infof("waiting for next opening at %s", hours.Next(time.Now()).Format(time.RFC1123))
		if _, err := hours.WaitUntilOpen(ctx, time.Now()); err != nil {
			return fmt.Errorf("interrupted while waiting for opening: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	events, err := eventlog.OpenFile(out, opts.logFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := events.Close(); err != nil {
			logrus.Warnf("failed to close event log: %v", err)
		}
	}()

	runID := uuid.New().String()
	logrus.Infof("run %s starting", runID)

	if opts.metricsAddr != "" {
		stop := serveMetrics(opts.metricsAddr)
		defer stop()
	}

	var bankOpts []simulation.Option
	if opts.showChart {
		bankOpts = append(bankOpts, simulation.WithTimeline())
	}
	bank, err := simulation.NewBank(roster, events, bankOpts...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := bank.Run(); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	if opts.showChart {
		chartGen := chart.NewGenerator()
		fmt.Fprintln(out, chartGen.GenerateOccupancyChart(bank.Timeline(), bank.Stats()))
		fmt.Fprintln(out, chartGen.GenerateDepartmentSummary(bank.Stats()))
	}

	if opts.pushURL != "" {
		err := push.New(opts.pushURL, pushJobName).
			Grouping("run_id", runID).
			Gatherer(metrics.Registry).
			Push()
		if err != nil {
			logrus.Warnf("failed to push metrics to %s: %v", opts.pushURL, err)
		} else {
			logrus.Infof("metrics pushed to %s", opts.pushURL)
		}
	}

	return nil
}

// serveMetrics exposes the simulator registry until the returned func is called
func serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logrus.Infof("metrics server listening on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("metrics server error: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logrus.Warnf("metrics server shutdown: %v", err)
		}
	}
}
