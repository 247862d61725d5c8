// Package main provides the entry point for oosim.
// oosim is a trace-driven cycle-accurate out-of-order pipeline simulator.
//
// For the full CLI, use: go run ./cmd/oosim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("oosim - Out-of-Order Pipeline Timing Simulator")
	fmt.Println("")
	fmt.Println("Usage: oosim [options] <rob_size> <iq_size> <width> <trace_file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to latency configuration JSON file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/oosim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/oosim' instead.")
	}
}
