// Package main provides a performance benchmarking tool for the Chartwire CLI.
// It measures execution times of the chart commands across worker counts and host
// backends, running each test multiple times, treating the first successful run as
// cold and averaging the rest as warm, and generating CSV output for analysis.
//
// Prerequisites:
// - chartwire binary installed and available in PATH
// - A chart config file, such as examples/.chartwire.yaml
//
// Usage: go run benchmark/main.go [config-file]
//
//	config-file: Chart config used for every run
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Backend  string
	Command  string
	Workers  int
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ConfigFile string
	HostDir    string
	Timeout    time.Duration
	Runs       int
	Workers    []int
	Commands   []string
	Backends   []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [config-file]\n", os.Args[0])
		os.Exit(1)
	}

	hostDir, err := os.MkdirTemp("", "chartwire-benchmark")
	if err != nil {
		fmt.Printf("Failed to create host directory: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(hostDir) }()

	config := BenchmarkConfig{
		ConfigFile: os.Args[1],
		HostDir:    hostDir,
		Timeout:    time.Minute,
		Runs:       5,
		Workers:    []int{1, 2, 4, 8},
		Commands:   []string{"data", "render"},
		Backends:   []string{"sqlite"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Seed the demo host using chartwire host seed
	fmt.Printf("Seeding host...\n")
	seedCmd := exec.Command("chartwire", append([]string{"host", "seed"}, hostArgs(config)...)...)
	if output, err := seedCmd.CombinedOutput(); err != nil {
		fmt.Printf("Failed to seed host: %v\nOutput: %s\n", err, string(output))
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the chartwire binary and config file exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("chartwire"); err != nil {
		return fmt.Errorf("chartwire binary not found in PATH")
	}
	if _, err := os.Stat(config.ConfigFile); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s", config.ConfigFile)
	}
	return nil
}

// hostArgs points every run at the benchmark's private SQLite host.
func hostArgs(config BenchmarkConfig) []string {
	return []string{
		"--config", config.ConfigFile,
		"--host-connect", filepath.Join(config.HostDir, "host.db"),
		"--notifier", "none",
	}
}

// runBenchmarks executes all benchmark tests across configured commands and worker counts
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d commands, %v timeout, workers %v, %d runs\n",
		len(config.Commands), config.Timeout, config.Workers, config.Runs)

	for _, backend := range config.Backends {
		for _, command := range config.Commands {
			for _, workers := range config.Workers {
				results = append(results, runBenchmarkSuite(config, backend, command, workers))
			}
		}
	}
	return results
}

// runBenchmarkSuite runs one command with a fixed worker count
func runBenchmarkSuite(config BenchmarkConfig, backend, command string, workers int) BenchmarkResult {
	fmt.Printf("Running %s on %s with %d workers\n", command, backend, workers)

	cold, warm := runBenchmark(config, backend, command, workers)

	coldTimeStr := "TIMEOUT"
	if cold > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", cold)
	}
	warmAvg := "TIMEOUT"
	if len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)

	return BenchmarkResult{
		Backend:  backend,
		Command:  command,
		Workers:  workers,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes a chartwire command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, backend, command string, workers int) (coldTime float64, warmTimes []float64) {
	args := []string{command, "--host-backend", backend, "--workers", fmt.Sprint(workers)}
	args = append(args, hostArgs(config)...)
	if command == "data" {
		args = append(args, "--output", "json")
	} else {
		args = append(args, "--output-dir", config.HostDir)
	}

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("chartwire", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "data" {
		return strings.Contains(outputStr, `"series"`)
	}
	return strings.Contains(outputStr, "Rendered")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("chartwire_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"backend", "cmd", "workers", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Backend, result.Command, fmt.Sprint(result.Workers), result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s %2d workers: Cold: %s, Warm: %s\n", result.Backend, result.Workers, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
