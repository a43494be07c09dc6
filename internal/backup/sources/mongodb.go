// Package sources provides backup source implementations.
package sources

import (
	"context"
	"fmt"
	"log/slog"

	mgo "github.com/juju/mgo/v3"

	"mongovault/internal/backup"
	"mongovault/internal/conf"
)

// MongoDBSource implements the backup.Source interface by running the
// mongodump tool as a subprocess. Authentication is always
// username/password against the configured auth database.
type MongoDBSource struct {
	cfg    *conf.MongoConfig
	exec   backup.Executor
	logger *slog.Logger
}

// NewMongoDBSource creates a MongoDB backup source.
func NewMongoDBSource(cfg *conf.MongoConfig, executor backup.Executor, logger *slog.Logger) *MongoDBSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoDBSource{cfg: cfg, exec: executor, logger: logger}
}

// Name returns the name of this source.
func (s *MongoDBSource) Name() string {
	return "mongodb"
}

// Validate validates the source configuration.
func (s *MongoDBSource) Validate() error {
	if s.cfg.URI == "" {
		return fmt.Errorf("mongodb: connection URI is required")
	}
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("mongodb: username and password are required")
	}
	if s.cfg.AuthDB == "" {
		return fmt.Errorf("mongodb: authentication database is required")
	}
	switch s.cfg.Scope {
	case conf.ScopeAll:
	case conf.ScopeSpecific:
		if s.cfg.Database == "" {
			return fmt.Errorf("mongodb: database name is required for scope %q", conf.ScopeSpecific)
		}
	default:
		return fmt.Errorf("mongodb: unknown scope %q", s.cfg.Scope)
	}
	return nil
}

// Dump runs mongodump, writing a gzip-compressed archive to archivePath.
// A non-zero exit aborts the whole run: an incomplete archive must never
// be uploaded.
func (s *MongoDBSource) Dump(ctx context.Context, archivePath string) error {
	if s.cfg.Ping {
		if err := s.ping(); err != nil {
			return backup.NewError(backup.ErrDump, "mongodb preflight ping failed", err)
		}
		s.logger.Debug("preflight ping succeeded", "uri", s.cfg.URI)
	}

	cmd := &backup.Command{
		Name: "mongodump",
		Args: s.dumpArgs(archivePath),
	}
	if err := s.exec.Run(ctx, cmd); err != nil {
		if backup.IsTimeoutError(err) || backup.IsCanceledError(err) {
			return err
		}
		return backup.NewError(backup.ErrDump, "mongodump failed", err)
	}
	return nil
}

// dumpArgs builds the mongodump argument list for the configured scope.
func (s *MongoDBSource) dumpArgs(archivePath string) []string {
	args := []string{
		"--uri", s.cfg.URI,
		"--username", s.cfg.Username,
		"--password", s.cfg.Password,
		"--authenticationDatabase", s.cfg.AuthDB,
		"--gzip",
		"--archive=" + archivePath,
	}
	if s.cfg.Scope == conf.ScopeSpecific {
		args = append(args, "--db", s.cfg.Database)
	}
	return args
}

// ping dials the deployment and pings it so authentication and
// reachability problems surface in seconds instead of after a long dump.
func (s *MongoDBSource) ping() error {
	info, err := mgo.ParseURL(s.cfg.URI)
	if err != nil {
		return fmt.Errorf("parsing connection URI: %w", err)
	}
	info.Username = s.cfg.Username
	info.Password = s.cfg.Password
	info.Source = s.cfg.AuthDB
	info.Timeout = s.cfg.PingWait

	session, err := mgo.DialWithInfo(info)
	if err != nil {
		return fmt.Errorf("dialing deployment: %w", err)
	}
	defer session.Close()

	if err := session.Ping(); err != nil {
		return fmt.Errorf("pinging deployment: %w", err)
	}
	return nil
}
