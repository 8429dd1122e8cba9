// File: app/options.go
// Author: momentics <momentics@gmail.com>
//
// CLI-flag-based process configuration, per spec.md §1's assembly of
// app.Config from command-line flags plus an io-config-file path.
package app

import (
	"flag"
)

// ReactorOptions is the flag-parsed form of Config, kept distinct so
// ParseFlags can report usage errors without constructing an App.
type ReactorOptions struct {
	Name         string
	NumCPUs      int
	IOConfigPath string
}

// Config converts parsed options into the Config New expects.
func (o ReactorOptions) Config() Config {
	return Config{
		Name:         o.Name,
		NumCPUs:      o.NumCPUs,
		IOConfigPath: o.IOConfigPath,
	}
}

// ParseFlags parses args (normally os.Args[1:]) into a ReactorOptions,
// registering -name, -cpus, and -io-config on a fresh FlagSet scoped to
// progName so repeated calls in tests don't collide with flag.CommandLine.
func ParseFlags(progName string, args []string) (ReactorOptions, error) {
	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	name := fs.String("name", progName, "process name, used for logging and the default io.conf path")
	cpus := fs.Int("cpus", 0, "number of shards to run (0 means runtime.NumCPU())")
	ioConfigPath := fs.String("io-config", "", "path to io.conf (default $HOME/.config/<name>/io.conf)")

	if err := fs.Parse(args); err != nil {
		return ReactorOptions{}, err
	}

	return ReactorOptions{
		Name:         *name,
		NumCPUs:      *cpus,
		IOConfigPath: *ioConfigPath,
	}, nil
}
