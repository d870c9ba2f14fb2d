package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type InvalidationCfg struct {
	Enabled bool
	Topic   string
	Brokers []string
	GroupID string
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr     string
	LogLevel string
	// LogConsole switches zerolog to human-readable output.
	LogConsole bool
	LogSampleN int
	// BaseURL prefixes every emitted link; empty derives it from each request.
	BaseURL  string
	APITitle string

	CatalogDir          string
	CatalogSnapshot     string
	CatalogSnapshotPath string
	CatalogTTL          time.Duration

	RedisAddr string

	GeometrySource  string
	SPARQLEndpoint  string
	UpstreamTimeout time.Duration
	MaxZones        int

	FilterCacheSize  int
	FilterCacheTTL   time.Duration
	FilterCacheRedis bool
	CacheOpTimeout   time.Duration

	Invalidation InvalidationCfg
	Metrics      MetricsCfg
	CORSOrigins  []string
}

const (
	SnapshotFile  = "file"
	SnapshotRedis = "redis"
	SnapshotNone  = "none"
)

func FromEnv() Config {
	snapshot := strings.ToLower(getenv("CATALOG_SNAPSHOT", SnapshotFile))
	switch snapshot {
	case SnapshotFile, SnapshotRedis, SnapshotNone:
	default:
		snapshot = SnapshotNone
	}

	return Config{
		Addr:       getenv("ADDR", ":8090"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),
		LogSampleN: getint("LOG_SAMPLE_N", 0),
		BaseURL:    strings.TrimRight(getenv("BASE_URL", ""), "/"),
		APITitle:   getenv("API_TITLE", "TB16Pix DGGS API"),

		CatalogDir:          getenv("CATALOG_DIR", "data"),
		CatalogSnapshot:     snapshot,
		CatalogSnapshotPath: getenv("CATALOG_SNAPSHOT_PATH", "data/catalog.snapshot.json"),
		CatalogTTL:          getduration("CATALOG_TTL", time.Hour),

		RedisAddr: getenv("REDIS_ADDR", ""),

		GeometrySource:  strings.ToLower(getenv("GEOMETRY_SOURCE", "local")),
		SPARQLEndpoint:  getenv("SPARQL_ENDPOINT", ""),
		UpstreamTimeout: getduration("UPSTREAM_TIMEOUT", 15*time.Second),
		MaxZones:        getint("MAX_ZONES", 200_000),

		FilterCacheSize:  getint("FILTER_CACHE_SIZE", 1024),
		FilterCacheTTL:   getduration("FILTER_CACHE_TTL", 10*time.Minute),
		FilterCacheRedis: getbool("FILTER_CACHE_REDIS", false),
		CacheOpTimeout:   getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),

		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Topic:   getenv("KAFKA_TOPIC", "dggs-catalog-invalidation"),
			Brokers: getlist("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getenv("KAFKA_GROUP_ID", "dggs-ldapi"),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", true),
			Addr:    getenv("METRICS_ADDR", ""),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
		CORSOrigins: getlist("CORS_ORIGINS", "*"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parse "a, b,,c" into [a b c]
func getlist(k, def string) []string {
	var out []string
	for p := range strings.SplitSeq(getenv(k, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
