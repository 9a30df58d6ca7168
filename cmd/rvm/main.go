// Command rvm loads a binary image produced by rvm_compiler and runs it
// until the program halts.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/rvm/config"
	"github.com/lookbusy1344/rvm/loader"
	"github.com/lookbusy1344/rvm/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		headless    = flag.Bool("headless", false, "Suppress input:/output: prompts from IN_U16/OUT_U16")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum cycles before the VM aborts (0: use the config default)")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config path)")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: rvm [flags] <image_file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("rvm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvm: %v\n", err)
		os.Exit(1)
	}

	img, err := loader.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvm: %v\n", err)
		os.Exit(1)
	}

	machine := vm.New()
	machine.Headless = cfg.IO.Headless || *headless
	if *maxCycles > 0 {
		machine.MaxCycles = *maxCycles
	} else {
		machine.MaxCycles = cfg.Execution.MaxCycles
	}

	loader.LoadInto(machine, img, 0)

	if err := machine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "rvm: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}
