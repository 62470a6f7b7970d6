package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainstack/study-content/pkg/studycontent"
	"github.com/brainstack/study-content/pkg/studycontent/objectkey"
	repomemory "github.com/brainstack/study-content/pkg/studycontent/repo/memory"
	repopg "github.com/brainstack/study-content/pkg/studycontent/repo/postgres"
	fsstorage "github.com/brainstack/study-content/pkg/studycontent/storage/fs"
	memorystorage "github.com/brainstack/study-content/pkg/studycontent/storage/memory"
	s3storage "github.com/brainstack/study-content/pkg/studycontent/storage/s3"
	"github.com/brainstack/study-content/pkg/studycontent/urlstrategy"
)

// ServerConfig represents server configuration for the study-content service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL" env-default:""`
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "postgres"
	DBSchema     string `env:"DB_SCHEMA" env-default:"studycontent"`

	// Storage configuration
	StorageBackend string `env:"STORAGE_BACKEND" env-default:"memory"` // "memory", "fs", "s3"
	FSBaseDir      string `env:"FS_BASE_DIR" env-default:"./data/storage"`
	FSURLPrefix    string `env:"FS_URL_PREFIX" env-default:""`

	S3Region          string `env:"S3_REGION" env-default:"auto"`
	S3Bucket          string `env:"S3_BUCKET" env-default:""`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" env-default:""`
	S3Endpoint        string `env:"S3_ENDPOINT" env-default:""`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3PresignDuration int    `env:"S3_PRESIGN_DURATION" env-default:"3600"`
	S3CreateBucket    bool   `env:"S3_CREATE_BUCKET" env-default:"false"`

	// PublicBaseURL is the CDN or public-bucket base used to derive
	// retrieval URLs. When empty, URLs are delegated to the storage
	// backend.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-default:""`

	// Upload routing
	UploadThresholdBytes int64 `env:"UPLOAD_THRESHOLD_BYTES" env-default:"10485760"`
	AuthorizationTTLSecs int   `env:"AUTHORIZATION_TTL_SECONDS" env-default:"3600"`

	// Auth configuration
	JWTSecret   string `env:"JWT_SECRET" env-default:""`
	AdminEmails string `env:"ADMIN_EMAILS" env-default:""` // comma-separated
}

// LoadServerConfig reads the server configuration from environment variables
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.StorageBackend {
	case "memory", "fs":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("s3_bucket is required when using s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.StorageBackend)
	}

	if c.UploadThresholdBytes <= 0 {
		return errors.New("upload_threshold_bytes must be positive")
	}

	if c.Environment == "production" && c.JWTSecret == "" {
		return errors.New("jwt_secret is required in production")
	}

	return nil
}

// AdminEmailSet parses the comma-separated admin email list into a
// lowercased lookup set.
func (c *ServerConfig) AdminEmailSet() []string {
	var emails []string
	for _, e := range strings.Split(c.AdminEmails, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (studycontent.Service, error) {
	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildStorageBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageBackend, err)
	}

	var urls urlstrategy.Strategy
	if c.PublicBaseURL != "" {
		urls = urlstrategy.NewPublicBucketStrategy(c.PublicBaseURL)
	} else {
		urls = urlstrategy.NewStorageDelegatedStrategy(store)
	}

	return studycontent.New(
		studycontent.WithRepository(repo),
		studycontent.WithBlobStore(c.StorageBackend, store),
		studycontent.WithKeyGenerator(objectkey.NewClassifiedGenerator()),
		studycontent.WithURLStrategy(urls),
		studycontent.WithUploadThreshold(c.UploadThresholdBytes),
		studycontent.WithAuthorizationTTL(time.Duration(c.AuthorizationTTLSecs)*time.Second),
	)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (studycontent.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		pool, err := c.newPool()
		if err != nil {
			return nil, err
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) newPool() (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	schema := c.DBSchema
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if schema == "" {
			return nil
		}
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// PingPostgres verifies connectivity to Postgres and optionally sets
// search_path for the session.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildStorageBackend creates a BlobStore based on the configuration
func (c *ServerConfig) buildStorageBackend() (studycontent.BlobStore, error) {
	switch c.StorageBackend {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.FSBaseDir,
			URLPrefix: c.FSURLPrefix,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3Region,
			Bucket:                 c.S3Bucket,
			AccessKeyID:            c.S3AccessKeyID,
			SecretAccessKey:        c.S3SecretAccessKey,
			Endpoint:               c.S3Endpoint,
			UsePathStyle:           c.S3UsePathStyle,
			PresignDuration:        c.S3PresignDuration,
			CreateBucketIfNotExist: c.S3CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.StorageBackend)
	}
}
