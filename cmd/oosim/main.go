// Package main provides the entry point for oosim.
// oosim is a trace-driven cycle-accurate simulator of a superscalar
// out-of-order pipeline.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/archsim/oosim/timing/core"
	"github.com/archsim/oosim/timing/latency"
	"github.com/archsim/oosim/timing/pipeline"
	"github.com/archsim/oosim/trace"
)

var (
	configPath = flag.String("config", "", "Path to latency configuration JSON file")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() != 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <rob_size> <iq_size> <width> <trace_file>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	robSize := parseSize(flag.Arg(0), "rob_size")
	iqSize := parseSize(flag.Arg(1), "iq_size")
	width := parseSize(flag.Arg(2), "width")
	tracePath := flag.Arg(3)

	table := latency.NewTable()
	if *configPath != "" {
		config, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading latency config: %v\n", err)
			os.Exit(1)
		}
		if err := config.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error in latency config: %v\n", err)
			os.Exit(1)
		}
		table = latency.NewTableWithConfig(config)
	}

	reader, err := trace.Open(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	if *verbose {
		fmt.Fprintf(os.Stderr, "ROB=%d IQ=%d WIDTH=%d trace=%s\n",
			robSize, iqSize, width, tracePath)
		cfg := table.Config()
		fmt.Fprintf(os.Stderr, "Latencies: type0=%d type1=%d type2=%d\n",
			cfg.Type0Latency, cfg.Type1Latency, cfg.Type2Latency)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	c := core.NewCore(
		pipeline.Config{ROBSize: robSize, IQSize: iqSize, Width: width},
		reader,
		pipeline.WithLatencyTable(table),
		pipeline.WithRetireHandler(func(in *pipeline.Instruction) {
			fmt.Fprintln(out, in.TimingLine())
		}),
	)
	stats := c.Run()

	fmt.Fprintf(out, "# === Simulator Command =========\n")
	fmt.Fprintf(out, "# ./sim %s %s %s %s \n",
		flag.Arg(0), flag.Arg(1), flag.Arg(2), flag.Arg(3))
	fmt.Fprintf(out, "# === Processor Configuration ===\n")
	fmt.Fprintf(out, "# ROB_SIZE  = %s\n", flag.Arg(0))
	fmt.Fprintf(out, "# IQ_SIZE   = %s\n", flag.Arg(1))
	fmt.Fprintf(out, "# WIDTH     = %s\n", flag.Arg(2))
	fmt.Fprintf(out, "# === Simulation Results ========\n")
	fmt.Fprintf(out, "# Dynamic Instruction Count      = %d\n", stats.Instructions)
	fmt.Fprintf(out, "# Cycles                         = %d\n", stats.Cycles)
	fmt.Fprintf(out, "# Instructions Per Cycle (IPC)   = %.2f\n", stats.IPC())
}

// parseSize parses a positive integer argument or exits with a diagnostic.
func parseSize(arg, name string) int {
	v, err := strconv.Atoi(arg)
	if err != nil || v <= 0 {
		fmt.Fprintf(os.Stderr, "Error: %s must be a positive integer, got %q\n", name, arg)
		os.Exit(1)
	}
	return v
}
