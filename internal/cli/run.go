package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/roach88/seedcomb/internal/dispatch"
	"github.com/roach88/seedcomb/internal/oracle"
	"github.com/roach88/seedcomb/internal/partition"
	"github.com/roach88/seedcomb/internal/plan"
	"github.com/roach88/seedcomb/internal/store"
)

// RunIDGenerator produces run identifiers. Overridable for testing.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator issues time-ordered run IDs.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database        string
	Worker          string // "i/M" slice selector
	Fresh           bool
	Measure         bool
	Progress        bool
	BatchSize       int
	Threads         int
	CheckpointEvery int64

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <plan-file>",
		Short: "Run a recovery search",
		Long: `Run the search described by a recovery plan.

The plan is compiled into a candidate space, the space is split into the
selected worker slice, and candidates are verified until a match is found,
the slice is exhausted, or the process is interrupted. Progress is
checkpointed to the autosave database; re-running the same command resumes
from the last checkpoint, and a plan edited since the checkpoint was
written is refused.

Example:
  seedcomb run --db ./seedcomb.db plan.yaml
  seedcomb run --db ./seedcomb.db --worker 2/8 plan.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to autosave database (required unless --measure)")
	cmd.Flags().StringVar(&opts.Worker, "worker", "", "distributed slice selector i/M (default the whole space)")
	cmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "discard existing checkpoints before starting")
	cmd.Flags().BoolVar(&opts.Measure, "measure", false, "measure enumeration rate with the null oracle, no persistence")
	cmd.Flags().BoolVar(&opts.Progress, "progress", false, "show a progress bar")
	cmd.Flags().IntVar(&opts.BatchSize, "batch", 0, "candidates per verification batch (default by oracle cost)")
	cmd.Flags().IntVar(&opts.Threads, "threads", 0, "concurrent oracle threads per worker")
	cmd.Flags().Int64Var(&opts.CheckpointEvery, "checkpoint-every", 0, "candidates between checkpoints")

	return cmd
}

// parseWorkerFlag parses "i/M" into a slice id and count.
func parseWorkerFlag(value string) (id, count int, err error) {
	if value == "" {
		return 0, 1, nil
	}
	lhs, rhs, ok := strings.Cut(value, "/")
	if !ok {
		return 0, 0, fmt.Errorf("worker selector %q: want i/M, e.g. 2/8", value)
	}
	if id, err = strconv.Atoi(lhs); err != nil {
		return 0, 0, fmt.Errorf("worker selector %q: bad worker id", value)
	}
	if count, err = strconv.Atoi(rhs); err != nil {
		return 0, 0, fmt.Errorf("worker selector %q: bad worker count", value)
	}
	if count < 1 || id < 0 || id >= count {
		return 0, 0, fmt.Errorf("worker selector %q: id must be in [0, M)", value)
	}
	return id, count, nil
}

func runSearch(opts *RunOptions, planPath string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	workerID, workerCount, err := parseWorkerFlag(opts.Worker)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad --worker flag", err)
	}
	if opts.Database == "" && !opts.Measure {
		return NewExitError(ExitCommandError, "--db is required (or use --measure)")
	}

	slog.Info("loading plan", "path", planPath)
	p, err := plan.Load(planPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load plan", err)
	}

	s, err := p.BuildSpace()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build candidate space", err)
	}
	slog.Info("candidate space ready",
		"cardinality", s.Cardinality().Text(10),
		"positions", s.Positions(),
		"fingerprint", s.Fingerprint())

	var orc oracle.Oracle
	if opts.Measure {
		orc = oracle.Null{}
	} else {
		orc, err = p.BuildOracle()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to build oracle", err)
		}
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	var st *store.Store
	if opts.Database != "" && !opts.Measure {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open autosave database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing autosave database", "error", closeErr)
			}
		}()
		if opts.Fresh {
			if err := st.DeleteCheckpoints(ctx); err != nil {
				return WrapExitError(ExitCommandError, "failed to clear checkpoints", err)
			}
		}
	}

	worker, err := buildWorker(ctx, st, s.Fingerprint(), workerID, workerCount, s.Cardinality())
	if err != nil {
		if partition.IsCheckpointMismatch(err) {
			return WrapExitError(ExitFailure, "checkpoint does not match this plan", err)
		}
		return WrapExitError(ExitCommandError, "failed to prepare worker", err)
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = UUIDv7Generator{}
	}
	runID := runIDs.Generate()

	cfg := dispatch.Config{
		Space:           s,
		Oracle:          orc,
		Workers:         []*partition.Worker{worker},
		Store:           st,
		Log:             slog.Default(),
		RunID:           runID,
		BatchSize:       opts.BatchSize,
		Threads:         opts.Threads,
		CheckpointEvery: opts.CheckpointEvery,
	}
	if opts.Progress && opts.Format == "text" {
		bar := newProgressBar(worker.Remaining(), opts.Measure)
		cfg.Progress = func(n int64) { _ = bar.Add64(n) }
		defer func() { _ = bar.Finish() }()
	}

	slog.Info("search starting",
		"run_id", runID, "worker", workerID, "of", workerCount,
		"range", worker.Range.String(), "oracle", orc.Name())

	res, err := dispatch.Run(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitFailure, "search failed", err)
	}

	return reportResult(opts, cmd, res, worker, runID)
}

func buildWorker(ctx context.Context, st *store.Store, fingerprint string, id, count int, total *big.Int) (*partition.Worker, error) {
	if st == nil {
		r, err := partition.WorkerRange(total, id, count)
		if err != nil {
			return nil, err
		}
		return partition.NewWorker(id, count, r), nil
	}
	return partition.Resume(ctx, st, fingerprint, id, count, total)
}

func newProgressBar(total *big.Int, measure bool) *progressbar.ProgressBar {
	// Spaces beyond int64 get a spinner; a bar with an astronomically
	// wrong denominator helps nobody.
	limit := int64(-1)
	if total.IsInt64() && total.Int64() < math.MaxInt64 {
		limit = total.Int64()
	}
	desc := "testing"
	if measure {
		desc = "measuring"
	}
	return progressbar.NewOptions64(limit,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("cand"),
		progressbar.OptionThrottle(250*time.Millisecond),
	)
}

type runReport struct {
	Found      bool    `json:"found"`
	Candidate  string  `json:"candidate,omitempty"`
	Ordinal    string  `json:"ordinal,omitempty"`
	Worker     int     `json:"worker"`
	State      string  `json:"state"`
	Tested     string  `json:"tested"`
	ElapsedSec float64 `json:"elapsed_sec"`
	RunID      string  `json:"run_id"`
	Rate       float64 `json:"rate_per_sec"`
}

func reportResult(opts *RunOptions, cmd *cobra.Command, res dispatch.Result, worker *partition.Worker, runID string) error {
	rate := 0.0
	if res.Elapsed.Seconds() > 0 {
		tested, _ := new(big.Float).SetInt(res.Tested).Float64()
		rate = tested / res.Elapsed.Seconds()
	}
	report := runReport{
		Found:      res.Match != nil,
		Worker:     worker.ID,
		State:      string(worker.State()),
		Tested:     res.Tested.Text(10),
		ElapsedSec: res.Elapsed.Seconds(),
		RunID:      runID,
		Rate:       rate,
	}
	if res.Match != nil {
		report.Candidate = res.Match.Candidate.Text
		report.Ordinal = res.Match.Ordinal.Text(10)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	formatter.VerboseLog("run %s finished: state=%s tested=%s",
		runID, report.State, report.Tested)
	if opts.Format == "json" {
		return formatter.SuccessRun(runID, report)
	}

	out := cmd.OutOrStdout()
	switch {
	case res.Match != nil:
		fmt.Fprintf(out, "MATCH FOUND\n  candidate: %s\n  ordinal:   %s\n  worker:    %d\n",
			report.Candidate, report.Ordinal, report.Worker)
	case worker.State() == partition.StatePaused:
		fmt.Fprintf(out, "Paused at ordinal %s. Re-run the same command to resume.\n",
			worker.Cursor().Text(10))
	default:
		fmt.Fprintln(out, "Not found in this space.")
	}
	fmt.Fprintf(out, "Tested %s candidates in %.1fs (%.0f/s).\n",
		report.Tested, report.ElapsedSec, report.Rate)
	return nil
}

// setupLogging configures the process-wide slog handler.
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// signalContext derives a context cancelled by SIGINT/SIGTERM, using the
// command's context when present (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			slog.Info("received signal, pausing", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
