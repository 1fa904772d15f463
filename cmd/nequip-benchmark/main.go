// Command nequip-benchmark measures the approximate MD performance of a given
// model configuration / dataset pair.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/KuzmaKhrabrov/nequip/internal/harness"
	"github.com/KuzmaKhrabrov/nequip/internal/logging"
)

var (
	profilePath = flag.String("profile", "", "Profile instead of timing, creating and outputting a Chrome trace JSON to the given path")
	deviceName  = flag.String("device", "", "Device to run the model on. If not provided, defaults to CUDA if available and CPU otherwise")
	trials      = flag.Int("n", 30, "Number of trials")
	nData       = flag.Int("n-data", 1, "Number of frames to use")
	timestep    = flag.Float64("timestep", 1.0, "MD timestep for ns/day estimation, in fs. Defaults to 1fs")
	noCompile   = flag.Bool("no-compile", false, "Don't compile the model for deployment, run it eagerly")
	verbose     = flag.String("verbose", "error", "Logging verbosity level")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <config.yaml>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Benchmark the approximate MD performance of a given model configuration / dataset pair.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one configuration file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}
	if *trials < 0 {
		fmt.Fprintf(os.Stderr, "Error: -n must be non-negative\n")
		os.Exit(1)
	}

	level, err := logging.ParseLevel(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, level)

	err = harness.Run(harness.Options{
		ConfigPath:  flag.Arg(0),
		ProfilePath: *profilePath,
		DeviceName:  *deviceName,
		Trials:      *trials,
		NData:       *nData,
		TimestepFS:  *timestep,
		NoCompile:   *noCompile,
		Log:         logger,
		Stdout:      os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Infof("total process CPU time: %v", cpuTimeNow())
}
