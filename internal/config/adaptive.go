package config

import "runtime"

// ApplyAdaptiveDefaults resolves the zero-valued Workers and MaxParallel
// fields from the hardware. Explicit values are left alone.
//
// Workers defaults to one per logical CPU. MaxParallel defaults to
// GOMAXPROCS, so a user asking for many more workers than cores still gets
// that many partitions while only GOMAXPROCS of them sum at once.
func ApplyAdaptiveDefaults(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MaxParallel == 0 {
		cfg.MaxParallel = runtime.GOMAXPROCS(0)
	}
	return cfg
}
