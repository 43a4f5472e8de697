package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/domain/gpsfile"
	"github.com/marazt/strava-upload/pkg/stravasync"
)

func main() {
	inputPath := flag.String("input", "", "Path to a FIT, TCX or GPX file")
	format := flag.String("format", "", "File format (fit|tcx|gpx); defaults to the file extension")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Please provide input file with -input")
		os.Exit(1)
	}

	f := activity.DataFormat(strings.ToLower(*format))
	if f == "" {
		f = activity.DataFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(*inputPath)), "."))
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}

	summary, err := gpsfile.Inspect(data, f)
	if err != nil {
		fmt.Printf("Failed to inspect file: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "File\t%s\n", *inputPath)
	fmt.Fprintf(w, "Format\t%s\n", summary.Format)
	fmt.Fprintf(w, "Points\t%d\n", summary.Points)
	if summary.Start != nil {
		fmt.Fprintf(w, "Start\t%s\n", summary.Start.Format(time.RFC3339))
		fmt.Fprintf(w, "End\t%s\n", summary.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration\t%s\n", summary.End.Sub(*summary.Start))
		fmt.Fprintf(w, "Match key\t%s\n", stravasync.KeyAt(*summary.Start))
	} else {
		fmt.Fprintf(w, "Start\t-\n")
	}
	w.Flush()

	if summary.Empty() {
		fmt.Println("\nWarning: no track points; Strava would reject this upload as empty.")
	}
}
