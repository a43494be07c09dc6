// Package conf handles loading and validation of the mongovault
// configuration from environment variables and an optional config file.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backup scope selectors.
const (
	ScopeAll      = "all"
	ScopeSpecific = "specific"
)

// Upload target selectors.
const (
	TargetAWS   = "aws"
	TargetAzure = "azure"
	TargetSFTP  = "sftp"
	TargetNone  = "none"
)

// AWS credential modes.
const (
	AWSAuthEC2 = "ec2"
	AWSAuthIAM = "iam"
)

// MongoConfig holds the connection and scope settings for the dump phase.
type MongoConfig struct {
	URI      string        // connection string, mongodb://host[:port]
	Username string        // user for authentication
	Password string        // password for authentication
	AuthDB   string        // authentication database
	Scope    string        // "all" or "specific"
	Database string        // database name, required when scope is "specific"
	Ping     bool          // dial and ping the deployment before dumping
	PingWait time.Duration // dial timeout for the preflight ping
}

// AWSConfig holds the settings for the S3 upload target.
type AWSConfig struct {
	Auth   string // "ec2" for instance-role credentials, "iam" for explicit keys
	Region string // region exported to the aws CLI
	S3URI  string // destination, s3://bucket[/prefix]
	Key    string // access key id, required when auth is "iam"
	Secret string // secret access key, required when auth is "iam"
}

// AzureConfig holds the settings for the Azure Blob upload target.
type AzureConfig struct {
	SASURI string // SAS-authenticated container URI
}

// SFTPConfig holds the settings for the SFTP upload target.
type SFTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	KeyFile  string // path to a private key, used instead of the password when set
	Path     string // remote directory for uploaded archives
}

// BackupConfig holds the archive, target and retention settings.
type BackupConfig struct {
	Target        string        // "aws", "azure", "sftp" or "none"
	Path          string        // local directory for archives
	Prefix        string        // archive filename prefix
	RetentionDays int           // local archives older than this many days are deleted
	DumpTimeout   time.Duration // 0 means no timeout on the dump subprocess
	UploadTimeout time.Duration // 0 means no timeout on the upload
	AWS           AWSConfig
	Azure         AzureConfig
	SFTP          SFTPConfig
}

// LogConfig holds the optional file logging settings.
type LogConfig struct {
	File       string // path to a JSON log file, empty disables file logging
	MaxSize    int    // megabytes before rotation
	MaxBackups int    // rotated files to keep
	MaxAge     int    // days to keep rotated files
}

// Settings is the complete configuration, assembled once at startup and
// passed explicitly to each phase.
type Settings struct {
	Debug  bool
	Mongo  MongoConfig
	Backup BackupConfig
	Log    LogConfig
}

// envBindings maps config keys to the environment variables the tool has
// always been driven by. The variable names are part of the operational
// contract and must not change.
var envBindings = map[string]string{
	"debug":                "DEBUG",
	"mongo.uri":            "MONGO_URI",
	"mongo.username":       "MONGO_USERNAME",
	"mongo.password":       "MONGO_PASSWORD",
	"mongo.authdb":         "MONGO_AUTH_DB",
	"mongo.scope":          "MONGO_SCOPE",
	"mongo.database":       "MONGO_DB",
	"mongo.ping":           "MONGO_PING",
	"mongo.pingwait":       "MONGO_PING_WAIT",
	"backup.target":        "BACKUP_TARGET",
	"backup.path":          "BACKUP_PATH",
	"backup.prefix":        "FILE_PREFIX",
	"backup.retentiondays": "BACKUP_RETENTION",
	"backup.dumptimeout":   "DUMP_TIMEOUT",
	"backup.uploadtimeout": "UPLOAD_TIMEOUT",
	"backup.aws.auth":      "AWS_AUTH",
	"backup.aws.region":    "AWS_REGION",
	"backup.aws.s3uri":     "AWS_S3_URI",
	"backup.aws.key":       "AWS_KEY",
	"backup.aws.secret":    "AWS_SECRET",
	"backup.azure.sasuri":  "AZURE_SAS_URI",
	"backup.sftp.host":     "SFTP_HOST",
	"backup.sftp.port":     "SFTP_PORT",
	"backup.sftp.username": "SFTP_USERNAME",
	"backup.sftp.password": "SFTP_PASSWORD",
	"backup.sftp.keyfile":  "SFTP_KEY_FILE",
	"backup.sftp.path":     "SFTP_PATH",
	"log.file":             "LOG_FILE",
}

// Load reads the optional config file and the environment into a Settings
// struct. Environment variables take precedence over file values. Load does
// not validate; Validate must run before any subprocess is started.
func Load(configPath string) (*Settings, error) {
	v := viper.New()

	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; the environment alone is a complete
		// configuration source.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	settings.Mongo.Scope = strings.ToLower(strings.TrimSpace(settings.Mongo.Scope))
	settings.Backup.Target = strings.ToLower(strings.TrimSpace(settings.Backup.Target))
	settings.Backup.AWS.Auth = strings.ToLower(strings.TrimSpace(settings.Backup.AWS.Auth))

	return settings, nil
}

// setDefaults registers defaults for values that have a sensible one.
// Required values deliberately have no default so validation can report
// them as missing.
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("mongo.scope", "")
	v.SetDefault("mongo.ping", false)
	v.SetDefault("mongo.pingwait", 10*time.Second)
	v.SetDefault("backup.target", "")
	v.SetDefault("backup.dumptimeout", time.Duration(0))
	v.SetDefault("backup.uploadtimeout", time.Duration(0))
	v.SetDefault("backup.aws.auth", AWSAuthEC2)
	v.SetDefault("backup.sftp.port", 22)
	v.SetDefault("backup.sftp.path", "backups")
	v.SetDefault("log.maxsize", 10)
	v.SetDefault("log.maxbackups", 3)
	v.SetDefault("log.maxage", 30)
}

// Defaults returns a Settings struct populated with default values only,
// used by "config init" to generate a starter config file.
func Defaults() *Settings {
	return &Settings{
		Mongo: MongoConfig{
			Scope:    ScopeAll,
			AuthDB:   "admin",
			PingWait: 10 * time.Second,
		},
		Backup: BackupConfig{
			Target:        TargetNone,
			Path:          "/var/backups/mongodb",
			Prefix:        "mongodb",
			RetentionDays: 7,
			AWS:           AWSConfig{Auth: AWSAuthEC2},
			SFTP:          SFTPConfig{Port: 22, Path: "backups"},
		},
		Log: LogConfig{
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
		},
	}
}
