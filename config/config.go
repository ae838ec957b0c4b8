// config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider identifiers accepted in source.provider / DATA_PROVIDER.
const (
	ProviderLocal       = "local"
	ProviderSharePoint  = "sharepoint"
	ProviderGoogleDrive = "google_drive"
	ProviderS3          = "aws_s3"
	ProviderAzureFiles  = "azure_files"
	ProviderMySQL       = "mysql"
)

var knownProviders = []string{
	ProviderLocal, ProviderSharePoint, ProviderGoogleDrive,
	ProviderS3, ProviderAzureFiles, ProviderMySQL,
}

const (
	defaultPort              = "5000"
	defaultHost              = "0.0.0.0"
	defaultRefreshMinutes    = 60
	defaultFetchTimeout      = 30 * time.Second
	defaultDataPath          = "Basketball Sources Links.xlsx"
	defaultMapPath           = "static/map.html"
	defaultMapTTLSeconds     = 86400
	defaultMapTopN           = 20
	defaultRateLimit         = "100 per hour"
	defaultAWSRegion         = "us-east-1"
	defaultGoogleCredentials = "credentials.json"
)

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	// RateLimit bounds manual refreshes, e.g. "100 per hour" or "10/minute".
	RateLimit string `yaml:"rate_limit"`

	RateLimitCount  int           `yaml:"-"` // Parsed from RateLimit
	RateLimitPeriod time.Duration `yaml:"-"` // Parsed from RateLimit
}

type SharePointConfig struct {
	SiteURL      string `yaml:"site_url"`
	FilePath     string `yaml:"file_path"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TenantID     string `yaml:"tenant_id"`
	// TokenURL overrides the Microsoft login endpoint. Empty means the tenant default.
	TokenURL string `yaml:"token_url"`
}

type GoogleDriveConfig struct {
	FileID          string `yaml:"file_id"`
	CredentialsPath string `yaml:"credentials_path"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	AccessKeyID     string `yaml:"aws_access_key_id"`
	SecretAccessKey string `yaml:"aws_secret_access_key"`
	Region          string `yaml:"region"`
	// Endpoint points at an S3-compatible store instead of AWS.
	Endpoint string `yaml:"endpoint"`
}

type AzureFilesConfig struct {
	AccountName string `yaml:"account_name"`
	AccountKey  string `yaml:"account_key"`
	ShareName   string `yaml:"share_name"`
	FilePath    string `yaml:"file_path"`
	// ServiceURL overrides https://{account}.file.core.windows.net.
	ServiceURL string `yaml:"service_url"`
}

// DatabaseConfig holds the MySQL connection used by the mysql provider.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Table    string `yaml:"table"`
}

type SourceConfig struct {
	Provider               string `yaml:"provider"`
	RefreshIntervalMinutes int    `yaml:"refresh_interval_minutes"`
	FetchTimeoutStr        string `yaml:"fetch_timeout"`
	LocalPath              string `yaml:"local_path"`
	FallbackPath           string `yaml:"fallback_path"`

	SharePoint  SharePointConfig  `yaml:"sharepoint"`
	GoogleDrive GoogleDriveConfig `yaml:"google_drive"`
	S3          S3Config          `yaml:"aws_s3"`
	AzureFiles  AzureFilesConfig  `yaml:"azure_files"`
	Database    DatabaseConfig    `yaml:"mysql"`

	RefreshInterval time.Duration `yaml:"-"` // Parsed from RefreshIntervalMinutes
	FetchTimeout    time.Duration `yaml:"-"` // Parsed from FetchTimeoutStr
}

type MapConfig struct {
	Path            string `yaml:"path"`
	TTLSeconds      int    `yaml:"ttl_seconds"`
	TopN            int    `yaml:"top_n"`
	CoordinatesPath string `yaml:"coordinates_path"`

	TTL time.Duration `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Source  SourceConfig  `yaml:"source"`
	Map     MapConfig     `yaml:"map"`
	Logging LoggingConfig `yaml:"logging"`
}

var AppConfig Config

// LoadConfig loads configuration into AppConfig. See Load.
func LoadConfig(configPath string) error {
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}
	AppConfig = *cfg
	return nil
}

// Load builds a Config from defaults, the optional YAML file at configPath,
// a .env file in the working directory and finally the process environment.
// Later sources win.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN Config: could not read .env file: %v", err)
	}
	applyEnv(cfg)

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the configuration used when nothing else is supplied.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        defaultHost,
			Port:        defaultPort,
			Environment: "development",
			RateLimit:   defaultRateLimit,
		},
		Source: SourceConfig{
			Provider:               ProviderLocal,
			RefreshIntervalMinutes: defaultRefreshMinutes,
			FetchTimeoutStr:        defaultFetchTimeout.String(),
			LocalPath:              defaultDataPath,
			FallbackPath:           defaultDataPath,
			GoogleDrive:            GoogleDriveConfig{CredentialsPath: defaultGoogleCredentials},
			S3:                     S3Config{Region: defaultAWSRegion},
			Database:               DatabaseConfig{Port: "3306", Table: "teams"},
		},
		Map: MapConfig{
			Path:       defaultMapPath,
			TTLSeconds: defaultMapTTLSeconds,
			TopN:       defaultMapTopN,
		},
		Logging: LoggingConfig{Level: "INFO"},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "HOST")
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Environment, "ENVIRONMENT")
	setRateLimit(&cfg.Server.RateLimit, "RATE_LIMIT")

	src := &cfg.Source
	setString(&src.Provider, "DATA_PROVIDER")
	setInt(&src.RefreshIntervalMinutes, "DATA_REFRESH_INTERVAL")
	setString(&src.FetchTimeoutStr, "DATA_FETCH_TIMEOUT")
	setString(&src.LocalPath, "LOCAL_DATA_PATH")
	setString(&src.FallbackPath, "FALLBACK_DATA_PATH")

	setString(&src.SharePoint.SiteURL, "SHAREPOINT_SITE_URL")
	setString(&src.SharePoint.FilePath, "SHAREPOINT_FILE_PATH")
	setString(&src.SharePoint.ClientID, "SHAREPOINT_CLIENT_ID")
	setString(&src.SharePoint.ClientSecret, "SHAREPOINT_CLIENT_SECRET")
	setString(&src.SharePoint.TenantID, "SHAREPOINT_TENANT_ID")

	setString(&src.GoogleDrive.FileID, "GOOGLE_DRIVE_FILE_ID")
	setString(&src.GoogleDrive.CredentialsPath, "GOOGLE_CREDENTIALS_PATH")

	setString(&src.S3.Bucket, "S3_BUCKET")
	setString(&src.S3.Key, "S3_KEY")
	setString(&src.S3.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&src.S3.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	setString(&src.S3.Region, "AWS_REGION")
	setString(&src.S3.Endpoint, "S3_ENDPOINT")

	setString(&src.AzureFiles.AccountName, "AZURE_STORAGE_ACCOUNT")
	setString(&src.AzureFiles.AccountKey, "AZURE_STORAGE_KEY")
	setString(&src.AzureFiles.ShareName, "AZURE_SHARE_NAME")
	setString(&src.AzureFiles.FilePath, "AZURE_FILE_PATH")

	setString(&src.Database.Host, "MYSQL_HOST")
	setString(&src.Database.Port, "MYSQL_PORT")
	setString(&src.Database.User, "MYSQL_USER")
	setString(&src.Database.Password, "MYSQL_PASSWORD")
	setString(&src.Database.DBName, "MYSQL_DATABASE")
	setString(&src.Database.Table, "MYSQL_TABLE")

	setString(&cfg.Map.Path, "MAP_PATH")
	setInt(&cfg.Map.TTLSeconds, "CACHE_TIMEOUT")
	setString(&cfg.Map.CoordinatesPath, "COUNTRY_COORDINATES_PATH")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
}

// finalize parses derived durations and validates the result.
func (c *Config) finalize() error {
	c.Source.Provider = strings.ToLower(strings.TrimSpace(c.Source.Provider))
	c.Logging.Level = strings.ToUpper(c.Logging.Level)

	if err := c.Validate(); err != nil {
		return err
	}

	n, per, err := ParseRateLimit(c.Server.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to parse rate_limit: %w", err)
	}
	c.Server.RateLimitCount, c.Server.RateLimitPeriod = n, per

	c.Source.RefreshInterval = time.Duration(c.Source.RefreshIntervalMinutes) * time.Minute
	c.Map.TTL = time.Duration(c.Map.TTLSeconds) * time.Second

	if c.Source.FetchTimeoutStr != "" {
		d, err := time.ParseDuration(c.Source.FetchTimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse fetch_timeout: %w", err)
		}
		c.Source.FetchTimeout = d
	} else {
		c.Source.FetchTimeout = defaultFetchTimeout
	}
	return nil
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	if !IsKnownProvider(c.Source.Provider) {
		return fmt.Errorf("unsupported data provider %q (expected one of %s)",
			c.Source.Provider, strings.Join(knownProviders, ", "))
	}
	if c.Source.RefreshIntervalMinutes <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %d minutes", c.Source.RefreshIntervalMinutes)
	}
	if c.Map.TTLSeconds <= 0 {
		return fmt.Errorf("map ttl must be positive, got %d seconds", c.Map.TTLSeconds)
	}
	if c.Source.FallbackPath == "" {
		return errors.New("fallback data path is not configured")
	}
	return nil
}

// IsKnownProvider reports whether name is one of the supported provider identifiers.
func IsKnownProvider(name string) bool {
	for _, p := range knownProviders {
		if p == name {
			return true
		}
	}
	return false
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.Logging.Level == "DEBUG"
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Printf("WARN Config: ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = n
}

// setRateLimit keeps the current value when the variable is blank or unparsable.
func setRateLimit(dst *string, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if _, _, err := ParseRateLimit(v); err != nil {
		log.Printf("WARN Config: ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = v
}

var rateLimitUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRateLimit reads "N", "N per <unit>" or "N/<unit>" where unit is
// second, minute, hour or day, optionally plural. A bare number is per hour.
// An empty string or a zero count means no limit.
func ParseRateLimit(s string) (int, time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, time.Hour, nil
	}
	count, unit := s, "hour"
	if i := strings.Index(s, "/"); i >= 0 {
		count, unit = s[:i], s[i+1:]
	} else if fields := strings.Fields(s); len(fields) == 3 && fields[1] == "per" {
		count, unit = fields[0], fields[2]
	} else if len(fields) != 1 {
		return 0, 0, fmt.Errorf("rate limit %q: expected \"N per unit\"", s)
	}

	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit %q: %w", s, err)
	}
	if n < 0 {
		return 0, 0, fmt.Errorf("rate limit %q: count must not be negative", s)
	}
	unit = strings.TrimSuffix(strings.TrimSpace(unit), "s")
	per, ok := rateLimitUnits[unit]
	if !ok {
		return 0, 0, fmt.Errorf("rate limit %q: unknown unit %q", s, unit)
	}
	return n, per, nil
}
