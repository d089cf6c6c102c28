// Command word15asm assembles one or more source files for the 15-bit word
// educational machine, emitting a .ob object file alongside .ent/.ext files
// whenever the source declares entries or external references.
//
// Usage: word15asm [--out-dir DIR] [--config FILE] [--verbose] FILE...
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pborman/getopt"

	"word15asm/assemble"
	"word15asm/config"
)

const version = "word15asm 1.0"

func main() {
	os.Exit(run())
}

func run() int {
	var outDir string
	var configPath string
	var verbose bool
	var showVersion bool

	getopt.StringVarLong(&outDir, "out-dir", 0, "directory to write .ob/.ent/.ext files into", "DIR")
	getopt.StringVarLong(&configPath, "config", 0, "TOML config file overriding the default settings", "FILE")
	getopt.BoolVarLong(&verbose, "verbose", 'v', "report each file as it is assembled")
	getopt.BoolVarLong(&showVersion, "version", 0, "print the version and exit")
	getopt.SetParameters("FILE...")
	getopt.Parse()

	if showVersion {
		fmt.Println(version)
		return 0
	}

	files := getopt.Args()
	if len(files) == 0 {
		getopt.PrintUsage(os.Stderr)
		return 1
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFrom(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "word15asm: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if outDir != "" {
		cfg.Output.Directory = outDir
	}
	if verbose {
		cfg.Display.Verbose = true
	}

	status := 0
	for _, path := range files {
		if !assembleFile(path, cfg) {
			status = 1
		}
	}
	return status
}

// assembleFile reads path, runs the pipeline, and writes the resulting
// artifacts under cfg.Output.Directory. It returns false on any failure:
// a read error or diagnostics from the pipeline itself.
func assembleFile(path string, cfg *config.Config) bool {
	src, err := os.ReadFile(path) // #nosec G304 -- path comes from CLI args
	if err != nil {
		fmt.Fprintf(os.Stderr, "word15asm: %v\n", err)
		return false
	}

	if cfg.Display.Verbose {
		fmt.Fprintf(os.Stderr, "word15asm: assembling %s\n", path)
	}

	result := assemble.Run(string(src), path)
	if !result.Succeeded {
		fmt.Fprint(os.Stderr, result.Diagnostics)
		return false
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := cfg.Output.Directory
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "word15asm: %v\n", err)
		return false
	}

	if err := writeArtifact(filepath.Join(dir, base+".ob"), result.Output.Object); err != nil {
		fmt.Fprintf(os.Stderr, "word15asm: %v\n", err)
		return false
	}
	if result.Output.Entries != "" || cfg.Output.EmitEmptyEntries {
		if err := writeArtifact(filepath.Join(dir, base+".ent"), result.Output.Entries); err != nil {
			fmt.Fprintf(os.Stderr, "word15asm: %v\n", err)
			return false
		}
	}
	if result.Output.Externals != "" || cfg.Output.EmitEmptyExterns {
		if err := writeArtifact(filepath.Join(dir, base+".ext"), result.Output.Externals); err != nil {
			fmt.Fprintf(os.Stderr, "word15asm: %v\n", err)
			return false
		}
	}
	return true
}

func writeArtifact(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
