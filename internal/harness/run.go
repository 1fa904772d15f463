package harness

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KuzmaKhrabrov/nequip/internal/bench"
	"github.com/KuzmaKhrabrov/nequip/internal/config"
	"github.com/KuzmaKhrabrov/nequip/internal/data"
	"github.com/KuzmaKhrabrov/nequip/internal/device"
	"github.com/KuzmaKhrabrov/nequip/internal/jit"
	"github.com/KuzmaKhrabrov/nequip/internal/logging"
	"github.com/KuzmaKhrabrov/nequip/internal/model"
	"github.com/KuzmaKhrabrov/nequip/internal/trace"
)

// Options configures a single benchmark run.
type Options struct {
	ConfigPath  string
	ProfilePath string  // non-empty switches to tracing mode
	DeviceName  string  // empty selects the default device
	Trials      int     // measured trials; 0 validates setup and exits
	NData       int     // frames to sample
	TimestepFS  float64 // integration timestep for the ns/day projection
	NoCompile   bool    // run the eager model directly

	Log    *logging.Logger
	Stdout io.Writer
}

// Run executes the whole pipeline once: sample → prepare → warmup →
// {trace | time} → report. Every call is blocking and synchronous; the run
// assumes exclusive use of the device for its duration.
func Run(opts Options) error {
	out := opts.Stdout
	log := opts.Log

	dev, err := device.Parse(opts.DeviceName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	fmt.Fprintf(out, "Using device: %s\n", dev)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	fmt.Fprintln(out, "Loading dataset... ")
	datasetStart := time.Now()
	ds, err := data.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	fmt.Fprintf(out, "    loading dataset took %.4fs\n", time.Since(datasetStart).Seconds())

	seed := cfg.GetInt64("dataset_seed", cfg.GetInt64("seed", 12345))
	frames, stats, err := SampleFrames(ds, opts.NData, seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "    loaded dataset of size %d and sampled --n-data=%d frames\n",
		stats.DatasetSize, opts.NData)
	fmt.Fprintln(out, "    benchmark frames statistics:")
	fmt.Fprintf(out, "         number of atoms: %d\n", stats.NumAtoms)
	fmt.Fprintf(out, "         number of types: %d\n", stats.NumTypes)
	fmt.Fprintf(out, "          avg. num edges: %g\n", stats.AvgEdges)
	fmt.Fprintf(out, "         avg. neigh/atom: %g\n", stats.AvgNeighbors)

	pool := NewPool(frames)

	// Short circuit: validate setup and quit without measuring.
	if opts.Trials == 0 {
		fmt.Fprintln(out, "Got -n 0, so quitting without running benchmark.")
		return nil
	}

	fmt.Fprintln(out, "Building model... ")
	modelStart := time.Now()
	m, err := model.FromConfig(cfg, ds)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	fmt.Fprintf(out, "    building model took %.4fs\n", time.Since(modelStart).Seconds())
	p := message.NewPrinter(language.English)
	fmt.Fprintf(out, "    model has %s weights\n", p.Sprintf("%d", m.NumWeights()))
	fmt.Fprintf(out, "    model has %s trainable weights\n", p.Sprintf("%d", m.NumTrainableWeights()))

	m.Eval()
	var callable jit.Callable
	if opts.NoCompile {
		callable = m.To(dev)
	} else {
		fmt.Fprintln(out, "Compile...")
		compileStart := time.Now()
		callable, err = jit.PrepareForInference(m.To(dev))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "    compilation took %.4fs\n", time.Since(compileStart).Seconds())
	}

	// Past the engine's bailout depth so measurements see steady-state,
	// shape-specialized execution.
	warmup := jit.WarmupCalls(cfg)
	log.Infof("warmup depth: %d calls", warmup)

	if opts.ProfilePath != "" {
		return runTracing(opts, out, callable, pool, warmup)
	}
	return runTiming(opts, out, callable, pool, warmup, stats.NumAtoms)
}

// runTracing drives the instrumented session: one throwaway call, warmup
// calls discarded from the trace, then Trials captured calls, exported to the
// requested artifact path.
func runTracing(opts Options, out io.Writer, callable jit.Callable, pool *Pool, warmup int) error {
	var exportErr error
	session, err := trace.NewSession(trace.Schedule{
		Wait:   1,
		Warmup: warmup,
		Active: opts.Trials,
		Repeat: 1,
	}, func(s *trace.Session) {
		if exportErr = s.Export(opts.ProfilePath); exportErr == nil {
			fmt.Fprintf(out, "Wrote profiling trace to `%s`\n", opts.ProfilePath)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	fmt.Fprintln(out, "Starting...")
	total := 1 + warmup + opts.Trials
	for i := 0; i < total; i++ {
		if err := session.Record("model_call", func() error {
			return callable.Call(pool.Next())
		}); err != nil {
			return fmt.Errorf("traced call %d: %w", i, err)
		}
		session.Step()
	}
	return exportErr
}

// runTiming drives the warmup phase and the statistical measurement, then
// prints the derived metrics.
func runTiming(opts Options, out io.Writer, callable jit.Callable, pool *Pool, warmup, nAtoms int) error {
	fmt.Fprintln(out, "Warmup...")
	warmupStart := time.Now()
	for i := 0; i < warmup; i++ {
		if err := callable.Call(pool.Next()); err != nil {
			return fmt.Errorf("warmup call %d: %w", i, err)
		}
	}
	fmt.Fprintf(out, "    %d calls of warmup took %.4fs\n", warmup, time.Since(warmupStart).Seconds())

	fmt.Fprintln(out, "Starting...")
	timer := bench.Timer{Stmt: func() error {
		return callable.Call(pool.Next())
	}}
	measurement, err := timer.Timeit(opts.Trials)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, " -- Results --")
	fmt.Fprintf(out, "PLEASE NOTE: these are speeds for the MODEL, evaluated on --n-data=%d configurations kept in memory.\n", opts.NData)
	fmt.Fprintln(out, "    \\_ MD itself, memory copies, and other overhead will affect real-world performance.")
	fmt.Fprintln(out)

	figs := measurement.SignificantFigures()
	trimmed := bench.TrimSigfig(measurement.Median(), figs)
	fmt.Fprintf(out, "The average call took %s\n", bench.FormatTime(trimmed, figs))

	fmt.Fprintln(out, "Assuming linear scaling - which is ALMOST NEVER true in practice, especially on GPU -")
	perAtom := bench.PerAtomTime(trimmed, nAtoms)
	unit, scale := bench.SelectUnit(perAtom)
	fmt.Fprintf(out, "    \\_ this comes out to %g %s/atom/call\n", perAtom/scale, unit)

	nsDay := bench.NsPerDay(trimmed, opts.TimestepFS)
	fmt.Fprintf(out, "For this system, at a %.2ffs timestep, this comes out to %.2f ns/day\n",
		opts.TimestepFS, nsDay)
	return nil
}
