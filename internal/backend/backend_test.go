package backend

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultScript(t *testing.T) {
	if got := defaultScript(""); got != "hierarchy -auto-top; proc; opt_clean" {
		t.Fatalf("defaultScript(\"\") = %q", got)
	}
	if got := defaultScript("cpu"); got != "hierarchy -top cpu; proc; opt_clean" {
		t.Fatalf("defaultScript(\"cpu\") = %q", got)
	}
}

func TestSynthesizeRequiresSources(t *testing.T) {
	_, err := Synthesize(nil, "", Options{})
	if err == nil || !strings.Contains(err.Error(), "no HDL sources") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveBinaryExplicitMissing(t *testing.T) {
	_, err := resolveBinary(filepath.Join(t.TempDir(), "nope"), "yosys")
	if err == nil {
		t.Fatalf("expected error for missing explicit binary")
	}
}

func TestSynthesizeWithStubBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub shell script requires a POSIX shell")
	}
	dir := t.TempDir()
	// The stub records its arguments and writes the -o target so the
	// invocation contract can be asserted without a real yosys install.
	stub := filepath.Join(dir, "yosys")
	script := `#!/bin/sh
echo "$@" > "` + filepath.Join(dir, "args") + `"
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
echo '{}' > "$out"
echo "stub ran"
`
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	src := filepath.Join(dir, "top.v")
	if err := os.WriteFile(src, []byte("module top; endmodule\n"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	out := filepath.Join(dir, "nested", "design.json")

	res, err := Synthesize([]string{src}, out, Options{YosysPath: stub, TopModule: "top"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if res.JSONPath != out {
		t.Fatalf("JSONPath = %q, want %q", res.JSONPath, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if !strings.Contains(res.Log, "stub ran") {
		t.Fatalf("tool output not captured: %q", res.Log)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	if err != nil {
		t.Fatalf("stub did not record args: %v", err)
	}
	for _, want := range []string{"-q", "hierarchy -top top", src} {
		if !strings.Contains(string(args), want) {
			t.Errorf("argument %q missing from invocation %q", want, args)
		}
	}
}

func TestSynthesizeDefaultsOutputToTempDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub shell script requires a POSIX shell")
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "yosys")
	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then echo '{}' > "$2"; fi
  shift
done
`
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	src := filepath.Join(dir, "top.v")
	if err := os.WriteFile(src, []byte("module top; endmodule\n"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	res, err := Synthesize([]string{src}, "", Options{YosysPath: stub})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if filepath.Base(res.JSONPath) != "design.json" {
		t.Fatalf("JSONPath = %q, want a design.json in a temp dir", res.JSONPath)
	}
	if _, err := os.Stat(res.JSONPath); err != nil {
		t.Fatalf("netlist missing: %v", err)
	}
}
