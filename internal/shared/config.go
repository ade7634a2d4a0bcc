package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type Config struct {
	AppEnv          string
	LogLevel        string
	HTTPAddr        string
	MetricsAddr     string
	ListingURL      string
	ListingURLs     []string
	ListingKey      string
	ListingRPS      int
	BedTypes        []domain.BedType
	CatalogLimit    int
	RatingsPageSize int
	StoreDriver     string
	MySQLDSN        string
	SQLitePath      string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	Workers         int
	CacheTTL        time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		LogLevel:        env("LOG_LEVEL", "info"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ""),
		ListingURL:      env("LISTING_URL", "http://localhost:3000/hotels.json"),
		ListingKey:      env("LISTING_API_KEY", ""),
		ListingRPS:      atoi("LISTING_RPS", 5),
		BedTypes:        bedTypes(env("BED_TYPES", "single,double,triple")),
		CatalogLimit:    atoi("CATALOG_LIMIT", 20),
		RatingsPageSize: atoi("RATINGS_PAGE_SIZE", 10),
		StoreDriver:     strings.ToLower(env("STORE_DRIVER", "mysql")),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotels?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		SQLitePath:      env("SQLITE_PATH", "hotels.db"),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisDB:         atoi("REDIS_DB", 0),
		RedisPass:       env("REDIS_PASSWORD", ""),
		Workers:         atoi("INGEST_WORKERS", 4),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	c.ListingURLs = splitList(env("LISTING_URLS", c.ListingURL))
	if len(c.BedTypes) == 0 {
		log.Warn().Msg("BED_TYPES is empty; bed type filters will reject every key")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func bedTypes(s string) []domain.BedType {
	var out []domain.BedType
	for _, p := range splitList(s) {
		out = append(out, domain.BedType(strings.ToLower(p)))
	}
	return out
}
