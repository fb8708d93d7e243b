package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/chesttrack/integrity"
	"github.com/sarchlab/chesttrack/journal"
	"github.com/sarchlab/chesttrack/logging"
	"github.com/sarchlab/chesttrack/monitoring"
	"github.com/sarchlab/chesttrack/replay"
	"github.com/sarchlab/chesttrack/timing"
)

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Replay a scenario and check its expectations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		opts, err := replayOptionsFromFlags(cmd, args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runReplay(ctx, opts, cmd.OutOrStdout())
	},
}

func init() {
	replayCmd.Flags().StringP("journal", "j", "",
		"record evictions into this SQLite file, defaults to $"+EnvJournal)
	replayCmd.Flags().BoolP("monitor", "m", false,
		"serve the state of the replay over HTTP")
	replayCmd.Flags().Int("monitor-port", 0,
		"port of the monitor, random if unset, defaults to $"+EnvMonitorPort)
	replayCmd.Flags().Bool("open", false,
		"open the monitor in a browser")
	replayCmd.Flags().Bool("no-progress", false,
		"do not draw a progress bar")
	rootCmd.AddCommand(replayCmd)
}

type replayOptions struct {
	scenario    string
	journal     string
	monitor     bool
	monitorPort int
	open        bool
	progress    bool
}

func replayOptionsFromFlags(
	cmd *cobra.Command,
	scenario string,
) (replayOptions, error) {
	opts := replayOptions{
		scenario: scenario,
		journal:  stringSetting(cmd, "journal", EnvJournal),
	}

	port, err := intSetting(cmd, "monitor-port", EnvMonitorPort)
	if err != nil {
		return opts, err
	}

	opts.monitorPort = port
	opts.monitor, _ = cmd.Flags().GetBool("monitor")
	opts.open, _ = cmd.Flags().GetBool("open")

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	opts.progress = !noProgress

	return opts, nil
}

// A replayRun is one replay with the instruments attached to it.
type replayRun struct {
	opts     replayOptions
	scenario *replay.Scenario
	engine   *timing.SerialEngine
	host     *replay.Host
	registry *prometheus.Registry

	recorder *journal.Recorder
	exec     *journal.ExecRecorder
	monitor  *monitoring.Monitor
	bar      *monitoring.ProgressBar
}

func runReplay(ctx context.Context, opts replayOptions, out io.Writer) error {
	s, err := replay.LoadScenario(opts.scenario)
	if err != nil {
		return err
	}

	r := &replayRun{
		opts:     opts,
		scenario: s,
		engine:   timing.NewSerialEngine(),
		registry: prometheus.NewRegistry(),
	}

	r.host, err = replay.NewHost(r.engine, s)
	if err != nil {
		return fmt.Errorf("preparing %s: %w", opts.scenario, err)
	}

	r.attachHooks()

	if err := r.openJournal(); err != nil {
		return err
	}

	if err := r.startMonitor(); err != nil {
		r.closeJournal()
		return err
	}

	err = r.run(ctx)

	r.stopMonitor()

	if err == nil {
		err = r.host.Err()
	}

	if err != nil {
		r.closeJournal()
		return err
	}

	if err := r.finishJournal(); err != nil {
		return err
	}

	return r.report(out)
}

func (r *replayRun) attachHooks() {
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sess := r.host.Session()
	logHook := logging.NewHook(log.Logger)

	sess.AcceptHook(logHook)
	sess.AcceptHook(integrity.NewMetricsHook(r.registry))
	r.host.AcceptHook(logHook)
	r.engine.AcceptHook(timing.NewEventLogger(log.Logger))
}

func (r *replayRun) openJournal() error {
	if r.opts.journal == "" {
		return nil
	}

	rec, err := journal.New(r.opts.journal)
	if err != nil {
		return err
	}

	r.recorder = rec
	r.host.Session().AcceptHook(journal.NewHook(rec))

	r.exec = journal.NewExecRecorder(rec)
	r.exec.Start()
	r.exec.Note("Scenario", r.opts.scenario)
	r.exec.Note("Scenario Name", r.scenario.Name)
	r.exec.Note("Duration", strconv.FormatInt(r.scenario.Duration, 10))

	log.Info().Str("file", rec.Filename()).Msg("journal")

	return nil
}

func (r *replayRun) finishJournal() error {
	if r.recorder == nil {
		return nil
	}

	r.exec.Note("Remaining", strconv.Itoa(r.host.Stats().Remaining))

	if err := r.exec.End(); err != nil {
		r.closeJournal()
		return err
	}

	return r.recorder.Close()
}

func (r *replayRun) closeJournal() {
	if r.recorder == nil {
		return
	}

	if err := r.recorder.Close(); err != nil {
		log.Error().Err(err).Msg("closing journal")
	}
}

func (r *replayRun) startMonitor() error {
	if !r.opts.monitor {
		return nil
	}

	sess := r.host.Session()

	m := monitoring.NewMonitor().
		WithPortNumber(r.opts.monitorPort).
		WithGatherer(r.registry)
	m.RegisterEngine(r.engine)
	m.RegisterComponent(r.host)
	m.RegisterBankSource(sess.Loader())
	m.RegisterSweepSource(sess.Scanner())

	url, err := m.StartServer()
	if err != nil {
		return err
	}

	r.monitor = m
	r.bar = m.CreateProgressBar(r.scenario.Name, uint64(r.scenario.Duration))

	if r.opts.open {
		if err := m.OpenInBrowser(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("cannot open browser")
		}
	}

	return nil
}

func (r *replayRun) stopMonitor() {
	if r.monitor == nil {
		return
	}

	r.monitor.CompleteProgressBar(r.bar)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.monitor.StopServer(ctx); err != nil {
		log.Warn().Err(err).Msg("stopping monitor")
	}
}

// run runs the engine while another goroutine reports progress. An
// interrupt stops the replay after the current tick.
func (r *replayRun) run(ctx context.Context) error {
	if err := r.host.Start(); err != nil {
		return err
	}

	done := make(chan struct{})
	g := new(errgroup.Group)

	g.Go(func() error {
		defer close(done)
		return r.engine.Run()
	})

	g.Go(func() error {
		r.trackProgress(ctx, done)
		return nil
	})

	return g.Wait()
}

func (r *replayRun) trackProgress(ctx context.Context, done <-chan struct{}) {
	bar := progressbar.NewOptions64(r.scenario.Duration,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(r.scenario.Name),
		progressbar.OptionSetVisibility(r.opts.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	interrupted := ctx.Done()

	var reported uint64

	update := func() {
		now := uint64(r.engine.Now())
		_ = bar.Set64(int64(now))

		if r.bar != nil && now > reported {
			r.bar.IncrementFinished(now - reported)
			reported = now
		}
	}

	for {
		select {
		case <-done:
			update()
			_ = bar.Finish()

			return
		case <-interrupted:
			log.Warn().Msg("interrupted, stopping after this tick")
			r.host.Stop()
			interrupted = nil
		case <-ticker.C:
			update()
		}
	}
}

func (r *replayRun) report(out io.Writer) error {
	stats := r.host.Stats()

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Scenario", r.scenario.Name})
	table.SetAutoFormatHeaders(false)
	table.Append([]string{"Ticks", strconv.FormatInt(stats.Ticks, 10)})
	table.Append([]string{"Sweeps", strconv.Itoa(stats.Sweeps)})
	table.Append([]string{"Resets", strconv.Itoa(stats.Resets)})

	causes := make([]integrity.Cause, 0, len(stats.Evictions))
	for c := range stats.Evictions {
		causes = append(causes, c)
	}

	sort.Slice(causes, func(i, j int) bool { return causes[i] < causes[j] })

	for _, c := range causes {
		table.Append([]string{
			"Evicted (" + c.String() + ")",
			strconv.Itoa(stats.Evictions[c]),
		})
	}

	table.Append([]string{"Remaining", strconv.Itoa(stats.Remaining)})
	table.Render()

	mismatches := r.host.Check()
	for _, m := range mismatches {
		fmt.Fprintln(out, "MISMATCH", m)
	}

	if len(mismatches) > 0 {
		return fmt.Errorf("%s: %d expectation(s) not met",
			r.scenario.Name, len(mismatches))
	}

	return nil
}
