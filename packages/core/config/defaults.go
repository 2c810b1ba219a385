package config

// DefaultStorePath is where captured values are persisted unless configured.
const DefaultStorePath = ".hitvars/captures.db"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultEnvironment: "dev",
		DotenvDir:          ".",
		StorePath:          DefaultStorePath,
		Session:            "default",
		Timeout:            30000, // 30 seconds
		FollowRedirects:    boolPtr(true),
		MaxRedirects:       10,
		NoColor:            boolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.DefaultEnvironment == defaults.DefaultEnvironment &&
		c.EnvironmentsFile == defaults.EnvironmentsFile &&
		c.DotenvDir == defaults.DotenvDir &&
		c.StorePath == defaults.StorePath &&
		c.Session == defaults.Session &&
		c.Timeout == defaults.Timeout &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		len(c.Headers) == 0 &&
		c.GetNoColor() == defaults.GetNoColor()
}
