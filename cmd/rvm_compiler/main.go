// Command rvm_compiler assembles a source file into the big-endian binary
// image rvm expects.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/rvm/config"
	"github.com/lookbusy1344/rvm/encoder"
	"github.com/lookbusy1344/rvm/parser"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("rvm_compiler %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if flag.NArg() != 2 {
		printUsage()
		os.Exit(1)
	}

	inPath, outPath := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvm_compiler: %v\n", err)
		os.Exit(1)
	}

	src, err := os.ReadFile(inPath) // #nosec G304 -- path is a user-supplied CLI argument
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvm_compiler: %v\n", err)
		os.Exit(1)
	}

	prog, errs := parser.Parse(inPath, string(src))
	if errs.HasErrors() {
		errs.Render(os.Stderr, cfg.Diagnostics.ColorOutput)
		os.Exit(1)
	}
	errs.Render(os.Stderr, cfg.Diagnostics.ColorOutput) // warnings only

	image := encoder.Serialize(prog)
	if err := os.WriteFile(outPath, image, 0644); err != nil { // #nosec G306 -- binary image, not a secret
		fmt.Fprintf(os.Stderr, "rvm_compiler: write %s: %v\n", outPath, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: rvm_compiler <input> <output>")
}
