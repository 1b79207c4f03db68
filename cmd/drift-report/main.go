// Command drift-report generates a standalone HTML drift report comparing
// two image directories, without touching history storage or the scheduler.
// Open the output file in a browser to inspect the per-feature breakdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/moseskim1027/visionops-defect-detection/internal/config"
	"github.com/moseskim1027/visionops-defect-detection/internal/pipeline"
	"github.com/moseskim1027/visionops-defect-detection/internal/report"
)

var (
	referenceDir = flag.String("reference", "data/processed/images/val", "Reference image directory")
	currentDir   = flag.String("current", "", "Current (drifted) image directory (required)")
	output       = flag.String("output", "drift_report.html", "Output HTML file path")
	configPath   = flag.String("config", "", "Drift config YAML (optional)")
)

func main() {
	flag.Parse()

	if *currentDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(cfg)
	runner.Artifacts = &report.Writer{HTMLPath: *output, Features: cfg.Features}

	rep, err := runner.Run(context.Background(), *referenceDir, *currentDir)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	fmt.Printf("drift_detected: %t (share %.2f)\n", rep.DriftDetected, rep.DriftShare)
	fmt.Printf("report saved to %s\n", *output)
}
