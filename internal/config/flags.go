package config

import (
	"flag"
)

// parses CLI flags for the server binary
func ParseServerFlags(args []string) Flags {
	fs := flag.NewFlagSet("beacon", flag.ExitOnError)
	path := fs.String("config", "", "path to a YAML config file (overrides BEACON_CONFIG)")
	port := fs.String("port", "", "port to listen on (overrides PORT)")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{ConfigPath: *path, Port: *port}
}

// applies command line overrides on top of a loaded configuration
func (f Flags) Apply(cfg *Config) {
	if f.Port != "" {
		cfg.Port = f.Port
	}
}
