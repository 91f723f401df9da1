package config

import "github.com/spf13/pflag"

// Overrides holds command-line values that take priority over the file.
// Zero values leave the file setting alone.
type Overrides struct {
	ConfigPath string
	Debug      bool
	LogFile    string
	LogJSON    bool
	QueueSize  int
}

// BindFlags registers the override flags on fs, typically the root
// command's persistent flag set.
func (o *Overrides) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&o.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&o.LogFile, "log-file", "", "Also write logs to this file")
	fs.BoolVar(&o.LogJSON, "log-json", false, "Log JSON lines to stderr")
	fs.IntVar(&o.QueueSize, "queue-size", 0, "Pending requests allowed per task type")
}

// apply applies CLI flag overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.LogJSON {
		cfg.Logging.JSON = true
	}
	if o.QueueSize > 0 {
		cfg.Tasks.QueueSize = o.QueueSize
	}
}
