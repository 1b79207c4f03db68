// Command driftsim generates a drifted image batch from a clean source set.
// The monitoring pipeline consumes these batches as its "current" side in
// demo and test environments.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/moseskim1027/visionops-defect-detection/internal/driftsim"
)

var (
	srcDir   = flag.String("src", "data/processed/images/val", "Source image directory")
	dstDir   = flag.String("dst", "data/drift_batches", "Batch output root")
	driftTyp = flag.String("type", "brightness", "Drift type: brightness | noise | blur | mixed")
	severity = flag.Float64("severity", 0.5, "Drift intensity in [0, 1]")
	fraction = flag.Float64("fraction", 0.3, "Fraction of source images to sample")
	seed     = flag.Int64("seed", 42, "Random seed for reproducible batches")
)

func main() {
	flag.Parse()

	batchDir, err := driftsim.SimulateBatch(*srcDir, *dstDir, driftsim.Options{
		Type:           driftsim.DriftType(*driftTyp),
		Severity:       *severity,
		SampleFraction: *fraction,
		Seed:           *seed,
	})
	if err != nil {
		log.Printf("drift simulation failed: %v", err)
		os.Exit(1)
	}

	fmt.Println(batchDir)
}
