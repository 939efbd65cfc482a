package config

// sink names accepted in EVENT_SINKS
const (
	SinkLog   = "log"
	SinkRedis = "redis"
	SinkKafka = "kafka"
	SinkLive  = "live"
)

// routes the server mounts itself; the beacon cannot take them over
var ReservedPaths = []string{
	"/health",
	"/api/v1/ping",
	"/api/v1/inspect",
	"/api/v1/live",
}

type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// path prefix the beacon answers on
	BeaconPath string `yaml:"beacon_path"`

	EventSinks  []string `yaml:"event_sinks"`
	EventBuffer int      `yaml:"event_buffer"`

	RedisURL    string `yaml:"redis_url"`
	RedisStream string `yaml:"redis_stream"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	// ulule formatted rate, e.g. "600-M"; empty disables limiting
	RateLimit string `yaml:"rate_limit"`

	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Flags struct {
	ConfigPath string
	Port       string
}

// reports whether the named sink is enabled
func (c *Config) HasSink(name string) bool {
	for _, s := range c.EventSinks {
		if s == name {
			return true
		}
	}

	return false
}

// returns host:port for the http listener
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
