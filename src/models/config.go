package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	GrpcHost string          `yaml:"grpc_host"`
	GrpcPort int             `yaml:"grpc_port"`
	Network  MNetworkConfig  `yaml:"network"`
	Provider MProviderConfig `yaml:"provider"`
	Watch    MWatchConfig    `yaml:"watch"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"` // seconds, applied to every outbound call
	UserAgent      string   `yaml:"user_agent"`
}

// MProviderConfig points at the quote provider endpoints used for the crumb handshake and chain fetch.
type MProviderConfig struct {
	CookieURL  string `yaml:"cookie_url"`
	CrumbURL   string `yaml:"crumb_url"`
	OptionsURL string `yaml:"options_url"`
	CrumbTTLMs int64  `yaml:"crumb_ttl_ms"`
}

type MWatchConfig struct {
	IntervalSeconds int  `yaml:"interval_seconds"`
	MarketHoursOnly bool `yaml:"market_hours_only"`
	MaxClients      int  `yaml:"max_clients"`
}

// GetLogLevel lets the logger pick its threshold from any config wrapper.
func (c *MConfig) GetLogLevel() string {
	if c == nil {
		return ""
	}
	return c.LogLevel
}
