// Package backend drives the external synthesis tool to turn HDL sources
// into the JSON netlist the compiler ingests.
package backend

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Options configures how the synthesis tool is invoked.
type Options struct {
	// YosysPath optionally overrides the yosys binary. When empty the
	// backend looks it up on PATH.
	YosysPath string
	// Script overrides the default synthesis command script handed to
	// yosys with -p.
	Script string
	// TopModule is forwarded to the hierarchy command when set; otherwise
	// yosys auto-detects the top.
	TopModule string
}

// Result lists the artifacts produced by a synthesis run.
type Result struct {
	JSONPath string
	Log      string
}

// Synthesize runs yosys over the HDL sources and writes the JSON netlist to
// outputPath. When outputPath is empty, the netlist is placed in a temporary
// directory and its path returned in Result.
func Synthesize(sources []string, outputPath string, opts Options) (Result, error) {
	if len(sources) == 0 {
		return Result{}, fmt.Errorf("backend: no HDL sources were provided")
	}
	binary, err := resolveBinary(opts.YosysPath, "yosys")
	if err != nil {
		return Result{}, fmt.Errorf("backend: resolve yosys: %w", err)
	}

	if outputPath == "" {
		// The caller reads the JSON back, so the temp directory outlives
		// this call and is reaped with the process.
		tempDir, mkErr := os.MkdirTemp("", "yosys2simcirjs-*")
		if mkErr != nil {
			return Result{}, fmt.Errorf("backend: create temp dir: %w", mkErr)
		}
		outputPath = filepath.Join(tempDir, "design.json")
	} else if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("backend: create output dir: %w", err)
		}
	}

	script := opts.Script
	if script == "" {
		script = defaultScript(opts.TopModule)
	}

	args := []string{"-q", "-p", script, "-o", outputPath}
	args = append(args, sources...)

	var log bytes.Buffer
	cmd := exec.Command(binary, args...)
	cmd.Stdout = &log
	cmd.Stderr = &log
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("backend: yosys failed: %w\n%s", err, log.String())
	}
	return Result{JSONPath: outputPath, Log: log.String()}, nil
}

// defaultScript elaborates the hierarchy, lowers processes and drops unused
// wires before the JSON write.
func defaultScript(top string) string {
	hierarchy := "hierarchy -auto-top"
	if top != "" {
		hierarchy = "hierarchy -top " + top
	}
	return strings.Join([]string{hierarchy, "proc", "opt_clean"}, "; ")
}

func resolveBinary(explicit, fallback string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	path, err := exec.LookPath(fallback)
	if err != nil {
		return "", err
	}
	return path, nil
}
