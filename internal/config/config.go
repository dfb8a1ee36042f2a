package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Storage backend identifiers accepted by STORAGE_BACKEND.
const (
	BackendRclone   = "rclone"
	BackendMinio    = "minio"
	BackendSupabase = "supabase"
)

// Config holds application level configuration loaded from environment and flags.
// It is built once at startup and never mutated afterwards.
type Config struct {
	RunAddress  string
	DatabaseURI string

	UploadDir        string
	CacheOriginalDir string
	CacheDesignDir   string
	CacheTTL         time.Duration

	PreviewEnabled      bool
	PreviewSingleflight bool
	PreviewQuality      int
	PrintQuality        int
	ConversionWorkers   int
	RasterizeCommand    []string
	ExternalCallTimeout time.Duration

	StorageBackend string
	RcloneBinary   string
	RcloneRemote   string

	YandexDiskToken string
	YandexDiskAPI   string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	PresignExpiry time.Duration

	ReconcileWorkers   int
	ReconcileQueueSize int
	ShutdownTimeout    time.Duration

	LogLevel     slog.Level
	OTelEndpoint string
}

const (
	defaultRunAddress          = ":8080"
	defaultUploadDir           = "data/uploads"
	defaultCacheOriginalDir    = "data/cache/original"
	defaultCacheDesignDir      = "data/cache/design"
	defaultCacheTTLSeconds     = 86400
	defaultPreviewQuality      = 75
	defaultPrintQuality        = 90
	defaultRasterizeCommand    = "inkscape --export-type=png --export-filename={output} {input}"
	defaultExternalCallTimeout = 2 * time.Minute
	defaultRcloneBinary        = "rclone"
	defaultYandexDiskAPI       = "https://cloud-api.yandex.net"
	defaultMinioEndpoint       = "localhost:9000"
	defaultMinioBucket         = "preview-cache"
	defaultSupabaseBucket      = "previews"
	defaultPresignExpiry       = 24 * time.Hour
	defaultReconcileWorkers    = 2
	defaultReconcileQueueSize  = 64
	defaultShutdownTimeout     = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		UploadDir:           getString(lookup, "UPLOAD_FOLDER", defaultUploadDir),
		CacheOriginalDir:    getString(lookup, "CACHE_ORIGINAL_DIR", defaultCacheOriginalDir),
		CacheDesignDir:      getString(lookup, "CACHE_DESIGN_DIR", defaultCacheDesignDir),
		PreviewEnabled:      getBool(lookup, "PREVIEW_ENABLED", false),
		PreviewSingleflight: getBool(lookup, "PREVIEW_SINGLEFLIGHT", false),
		PreviewQuality:      getInt(lookup, "PREVIEW_QUALITY", defaultPreviewQuality),
		PrintQuality:        getInt(lookup, "PRINT_QUALITY", defaultPrintQuality),
		ConversionWorkers:   getInt(lookup, "CONVERSION_WORKERS", runtime.NumCPU()),
		ExternalCallTimeout: getDuration(lookup, "EXTERNAL_CALL_TIMEOUT", defaultExternalCallTimeout),
		StorageBackend:      strings.ToLower(getString(lookup, "STORAGE_BACKEND", BackendRclone)),
		RcloneBinary:        getString(lookup, "RCLONE_BINARY", defaultRcloneBinary),
		RcloneRemote:        getString(lookup, "RCLONE_REMOTE", ""),
		YandexDiskToken:     getString(lookup, "YANDEX_DISK_TOKEN", ""),
		YandexDiskAPI:       getString(lookup, "YANDEX_DISK_API", defaultYandexDiskAPI),
		MinioEndpoint:       getString(lookup, "MINIO_ENDPOINT", defaultMinioEndpoint),
		MinioAccessKey:      getString(lookup, "MINIO_ACCESS_KEY", ""),
		MinioSecretKey:      getString(lookup, "MINIO_SECRET_KEY", ""),
		MinioBucket:         getString(lookup, "MINIO_BUCKET_NAME", defaultMinioBucket),
		MinioUseSSL:         getBool(lookup, "MINIO_USE_SSL", false),
		SupabaseURL:         getString(lookup, "SUPABASE_URL", ""),
		SupabaseKey:         getString(lookup, "SUPABASE_KEY", ""),
		SupabaseBucket:      getString(lookup, "SUPABASE_STORAGE_BUCKET", defaultSupabaseBucket),
		PresignExpiry:       getDuration(lookup, "PRESIGN_EXPIRY", defaultPresignExpiry),
		ReconcileWorkers:    getInt(lookup, "RECONCILE_WORKERS", defaultReconcileWorkers),
		ReconcileQueueSize:  getInt(lookup, "RECONCILE_QUEUE_SIZE", defaultReconcileQueueSize),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		OTelEndpoint:        getString(lookup, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	fs := flag.NewFlagSet("printshop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		cacheTTLSeconds    = getInt(lookup, "CACHE_EXPIRATION_SECONDS", defaultCacheTTLSeconds)
		externalTimeoutStr = cfg.ExternalCallTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		rasterizeCommand   = getString(lookup, "RASTERIZE_COMMAND", defaultRasterizeCommand)
		logLevel           = getString(lookup, "LOG_LEVEL", "info")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "Staging directory for uploads and downloads")
	fs.StringVar(&cfg.CacheOriginalDir, "cache-original-dir", cfg.CacheOriginalDir, "Local cache directory for original previews")
	fs.StringVar(&cfg.CacheDesignDir, "cache-design-dir", cfg.CacheDesignDir, "Local cache directory for design previews")
	fs.IntVar(&cacheTTLSeconds, "cache-ttl", cacheTTLSeconds, "Local preview cache TTL in seconds")
	fs.BoolVar(&cfg.PreviewEnabled, "preview-enabled", cfg.PreviewEnabled, "Serve previews")
	fs.BoolVar(&cfg.PreviewSingleflight, "preview-singleflight", cfg.PreviewSingleflight, "Deduplicate concurrent preview regeneration")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "Remote storage backend: rclone, minio or supabase")
	fs.StringVar(&externalTimeoutStr, "external-timeout", externalTimeoutStr, "Timeout applied to storage and rasterization calls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.ReconcileWorkers, "reconcile-workers", cfg.ReconcileWorkers, "Number of background reconciliation workers")
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ExternalCallTimeout, err = time.ParseDuration(externalTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid external timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = defaultCacheTTLSeconds
	}
	cfg.CacheTTL = time.Duration(cacheTTLSeconds) * time.Second

	cfg.RasterizeCommand = strings.Fields(rasterizeCommand)
	if len(cfg.RasterizeCommand) == 0 {
		cfg.RasterizeCommand = strings.Fields(defaultRasterizeCommand)
	}

	if cfg.PreviewQuality <= 0 || cfg.PreviewQuality > 100 {
		cfg.PreviewQuality = defaultPreviewQuality
	}

	if cfg.PrintQuality <= 0 || cfg.PrintQuality > 100 {
		cfg.PrintQuality = defaultPrintQuality
	}

	if cfg.ConversionWorkers <= 0 {
		cfg.ConversionWorkers = runtime.NumCPU()
	}

	if cfg.ExternalCallTimeout <= 0 {
		cfg.ExternalCallTimeout = defaultExternalCallTimeout
	}

	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = defaultPresignExpiry
	}

	if cfg.ReconcileWorkers <= 0 {
		cfg.ReconcileWorkers = defaultReconcileWorkers
	}

	if cfg.ReconcileQueueSize <= 0 {
		cfg.ReconcileQueueSize = defaultReconcileQueueSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if err := cfg.validateBackend(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validateBackend() error {
	switch c.StorageBackend {
	case BackendRclone:
		if c.RcloneRemote == "" {
			return fmt.Errorf("rclone remote must be provided")
		}
	case BackendMinio:
		if c.MinioEndpoint == "" || c.MinioBucket == "" {
			return fmt.Errorf("minio endpoint and bucket must be provided")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("supabase url and key must be provided")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
