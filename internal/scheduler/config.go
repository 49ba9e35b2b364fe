// Package scheduler dispatches batches of jobs with bounded concurrency.
package scheduler

// Default concurrency for gh calls.
const (
	DefaultGlobalMax      = 8
	DefaultLocalExecLimit = 4
	fallbackLimit         = 1
)

// Config is the scheduler section of .taskgov/config.yaml.
type Config struct {
	// GlobalMax caps concurrent jobs across connectors; 0 means no cap.
	GlobalMax int `yaml:"global_max"`
	// ByConnector caps concurrent jobs per connector name.
	ByConnector map[string]int `yaml:"by_connector"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		GlobalMax:   DefaultGlobalMax,
		ByConnector: map[string]int{"localexec": DefaultLocalExecLimit},
	}
}

// ConnectorLimit returns the configured limit for a connector, or 1 when
// the connector is not listed.
func (c *Config) ConnectorLimit(name string) int {
	if limit, ok := c.ByConnector[name]; ok {
		return limit
	}
	return fallbackLimit
}

// EffectiveLimit is the smaller of the connector and global limits, never
// below 1.
func (c *Config) EffectiveLimit(name string) int {
	limit := c.ConnectorLimit(name)
	if c.GlobalMax > 0 && c.GlobalMax < limit {
		limit = c.GlobalMax
	}
	return max(limit, fallbackLimit)
}
