package app

import "flag"

// Config holds viewer flags.
type Config struct {
	Grid  string
	Scale int
	TPS   int
	Rate  int
}

// NewConfig returns the default viewer settings.
func NewConfig() *Config {
	return &Config{Scale: 3, TPS: 60, Rate: 30}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Grid, "grid", c.Grid, "grid file written by lichtenberg run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.IntVar(&c.Rate, "rate", c.Rate, "lineage levels revealed per second")
}
