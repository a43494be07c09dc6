package conf

import (
	"fmt"
)

// MissingValueError reports a required configuration value that is unset.
// It carries the environment variable name so the operator sees exactly
// which variable to fix.
type MissingValueError struct {
	Var string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("missing required configuration value: %s", e.Var)
}

// InvalidValueError reports a configuration value that is set but not usable.
type InvalidValueError struct {
	Var    string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %q (%s)", e.Var, e.Value, e.Reason)
}

// requiredValue pairs a configuration value with the environment variable
// that sets it, in the order validation reports them.
type requiredValue struct {
	envVar string
	value  string
}

// Validate checks that every value required by the selected scope and
// target is present. Validation is all-or-nothing and runs before any
// subprocess: the first missing value is reported and nothing else runs.
func Validate(s *Settings) error {
	always := []requiredValue{
		{"MONGO_URI", s.Mongo.URI},
		{"MONGO_SCOPE", s.Mongo.Scope},
		{"MONGO_USERNAME", s.Mongo.Username},
		{"MONGO_PASSWORD", s.Mongo.Password},
		{"MONGO_AUTH_DB", s.Mongo.AuthDB},
		{"FILE_PREFIX", s.Backup.Prefix},
		{"BACKUP_PATH", s.Backup.Path},
	}
	for _, rv := range always {
		if rv.value == "" {
			return &MissingValueError{Var: rv.envVar}
		}
	}

	if s.Backup.RetentionDays == 0 {
		return &MissingValueError{Var: "BACKUP_RETENTION"}
	}
	if s.Backup.RetentionDays < 0 {
		return &InvalidValueError{
			Var:    "BACKUP_RETENTION",
			Value:  fmt.Sprintf("%d", s.Backup.RetentionDays),
			Reason: "must be a positive number of days",
		}
	}

	switch s.Mongo.Scope {
	case ScopeAll:
	case ScopeSpecific:
		if s.Mongo.Database == "" {
			return &MissingValueError{Var: "MONGO_DB"}
		}
	default:
		return &InvalidValueError{
			Var:    "MONGO_SCOPE",
			Value:  s.Mongo.Scope,
			Reason: `must be "all" or "specific"`,
		}
	}

	return validateTarget(s)
}

// validateTarget checks the values required by the selected upload target.
// An empty target and "none" both mean the archive stays local; any other
// unrecognized value is a hard error rather than a silent no-op, so a typo
// cannot quietly leave backups on local disk only.
func validateTarget(s *Settings) error {
	switch s.Backup.Target {
	case "", TargetNone:
		return nil
	case TargetAzure:
		if s.Backup.Azure.SASURI == "" {
			return &MissingValueError{Var: "AZURE_SAS_URI"}
		}
	case TargetAWS:
		if s.Backup.AWS.S3URI == "" {
			return &MissingValueError{Var: "AWS_S3_URI"}
		}
		if s.Backup.AWS.Region == "" {
			return &MissingValueError{Var: "AWS_REGION"}
		}
		switch s.Backup.AWS.Auth {
		case AWSAuthEC2:
		case AWSAuthIAM:
			if s.Backup.AWS.Key == "" {
				return &MissingValueError{Var: "AWS_KEY"}
			}
			if s.Backup.AWS.Secret == "" {
				return &MissingValueError{Var: "AWS_SECRET"}
			}
		default:
			return &InvalidValueError{
				Var:    "AWS_AUTH",
				Value:  s.Backup.AWS.Auth,
				Reason: `must be "ec2" or "iam"`,
			}
		}
	case TargetSFTP:
		if s.Backup.SFTP.Host == "" {
			return &MissingValueError{Var: "SFTP_HOST"}
		}
		if s.Backup.SFTP.Username == "" {
			return &MissingValueError{Var: "SFTP_USERNAME"}
		}
		if s.Backup.SFTP.Password == "" && s.Backup.SFTP.KeyFile == "" {
			return &MissingValueError{Var: "SFTP_PASSWORD"}
		}
	default:
		return &InvalidValueError{
			Var:    "BACKUP_TARGET",
			Value:  s.Backup.Target,
			Reason: `must be "aws", "azure", "sftp" or "none"`,
		}
	}
	return nil
}

// ValidateSweep checks only the values the retention sweep needs. The prune
// command uses it so a sweep can run without the full dump configuration.
func ValidateSweep(s *Settings) error {
	if s.Backup.Path == "" {
		return &MissingValueError{Var: "BACKUP_PATH"}
	}
	if s.Backup.RetentionDays == 0 {
		return &MissingValueError{Var: "BACKUP_RETENTION"}
	}
	if s.Backup.RetentionDays < 0 {
		return &InvalidValueError{
			Var:    "BACKUP_RETENTION",
			Value:  fmt.Sprintf("%d", s.Backup.RetentionDays),
			Reason: "must be a positive number of days",
		}
	}
	return nil
}
