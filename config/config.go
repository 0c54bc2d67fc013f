package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Recommend RecommendConfig `yaml:"recommend"`
	Worker    WorkerConfig    `yaml:"worker"`
}

type HTTPConfig struct {
	Address      string `yaml:"address"`
	TemplatesDir string `yaml:"templates_dir"`
	StaticDir    string `yaml:"static_dir"`
}

type DatabaseConfig struct {
	// Path to the SQLite fares database file.
	Path string `yaml:"path"`
	// AirportsCSV points at the iata,lat,lon file backing the map.
	AirportsCSV string `yaml:"airports_csv"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Enabled gates the result cache and popularity counters; the app
	// works without Redis, every search just recomputes.
	Enabled bool `yaml:"enabled"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	SearchEventsTopic string   `yaml:"search_events_topic"`
	GroupID           string   `yaml:"group_id"`
	Enabled           bool     `yaml:"enabled"`
}

type RecommendConfig struct {
	// UseMilesThresholdCents is the value-per-mile above which redeeming
	// beats paying cash.
	UseMilesThresholdCents   float64 `yaml:"use_miles_threshold_cents"`
	DefaultMinLayoverMinutes int     `yaml:"default_min_layover_minutes"`
	DefaultMaxResults        int     `yaml:"default_max_results"`
	ResultsCacheTTLSeconds   int     `yaml:"results_cache_ttl_seconds"`
}

type WorkerConfig struct {
	PopularRoutesLimit int `yaml:"popular_routes_limit"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.TemplatesDir == "" {
		c.HTTP.TemplatesDir = "web/templates"
	}
	if c.HTTP.StaticDir == "" {
		c.HTTP.StaticDir = "web/static"
	}
	if c.Database.Path == "" {
		c.Database.Path = "travel_data_with_miles.db"
	}
	if c.Database.AirportsCSV == "" {
		c.Database.AirportsCSV = "airports.csv"
	}
	if c.Recommend.UseMilesThresholdCents == 0 {
		c.Recommend.UseMilesThresholdCents = 1.2
	}
	if c.Recommend.DefaultMinLayoverMinutes == 0 {
		c.Recommend.DefaultMinLayoverMinutes = 45
	}
	if c.Recommend.DefaultMaxResults == 0 {
		c.Recommend.DefaultMaxResults = 100
	}
	if c.Recommend.ResultsCacheTTLSeconds == 0 {
		c.Recommend.ResultsCacheTTLSeconds = 300
	}
	if c.Worker.PopularRoutesLimit == 0 {
		c.Worker.PopularRoutesLimit = 10
	}
}
