// Command driftwatch runs one drift-monitoring check: it compares a current
// image batch against a reference set, prints the verdict, optionally writes
// report artifacts and history, and (with -trigger) queues a retraining run
// when drift is detected.
//
// The external scheduler invokes this on a fixed cadence and guarantees at
// most one concurrent run; driftwatch does no locking of its own.
//
// Exit codes: 0 completed run (drift or not), 1 input or configuration
// failure, 2 drift computed but the retraining trigger failed (rerun with
// the same history row to retry just the trigger).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/moseskim1027/visionops-defect-detection/internal/config"
	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
	"github.com/moseskim1027/visionops-defect-detection/internal/pipeline"
	"github.com/moseskim1027/visionops-defect-detection/internal/report"
	storage "github.com/moseskim1027/visionops-defect-detection/internal/storage/sqlite"
	"github.com/moseskim1027/visionops-defect-detection/internal/trigger"
	"github.com/moseskim1027/visionops-defect-detection/internal/version"
)

var (
	referenceDir = flag.String("reference", "", "Reference image directory (required)")
	currentDir   = flag.String("current", "", "Current batch image directory (required)")
	configPath   = flag.String("config", "", "Drift config YAML (optional; defaults apply)")
	htmlPath     = flag.String("html", "", "Write an HTML summary to this path")
	histogramDir = flag.String("histograms", "", "Write per-feature histogram PNGs to this directory")
	dbPath       = flag.String("db", "", "Append the report to this sqlite history database")
	airflowURL   = flag.String("airflow", "", "Airflow base URL for the retraining trigger")
	dagID        = flag.String("dag", trigger.DefaultDagID, "Training DAG to trigger on drift")
	doTrigger    = flag.Bool("trigger", false, "Trigger retraining when drift is detected")
	showVersion  = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("driftwatch", version.String())
		return
	}

	if *referenceDir == "" || *currentDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(cfg)

	if *htmlPath != "" || *histogramDir != "" {
		runner.Artifacts = &report.Writer{
			HTMLPath:     *htmlPath,
			HistogramDir: *histogramDir,
			Features:     cfg.Features,
		}
	}

	if *dbPath != "" {
		db, err := storage.Open(*dbPath)
		if err != nil {
			log.Printf("opening history database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		runner.Sink = storage.NewReportStore(db)
	}

	if *doTrigger {
		if *airflowURL == "" {
			log.Printf("-trigger requires -airflow")
			os.Exit(1)
		}
		c := trigger.NewClient(nil, *airflowURL, *dagID)
		c.Username = os.Getenv("AIRFLOW_USERNAME")
		c.Password = os.Getenv("AIRFLOW_PASSWORD")
		runner.Trigger = c
	}

	rep, err := runner.Run(context.Background(), *referenceDir, *currentDir)
	if err != nil {
		if pipeline.IsTriggerError(err) {
			// The drift verdict stands; only the trigger needs retrying.
			printReport(rep)
			log.Printf("%v", err)
			os.Exit(2)
		}
		log.Printf("%v", err)
		os.Exit(1)
	}

	printReport(rep)
}

func printReport(r *drift.Report) {
	if r == nil {
		return
	}
	if r.Skipped {
		fmt.Println("skipped: insufficient samples for drift evaluation")
	}
	fmt.Printf("drift_detected: %t\n", r.DriftDetected)
	fmt.Printf("drift_share: %.2f\n", r.DriftShare)
	fmt.Printf("drifted_features: [%s]\n", strings.Join(r.DriftedFeatures, ", "))
}
