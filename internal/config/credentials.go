package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const credFileName = "credentials.json"

// Env vars that take precedence over the credentials file.
const (
	EnvAccessKeyID     = "GROCER_S3_ACCESS_KEY_ID"
	EnvSecretAccessKey = "GROCER_S3_SECRET_ACCESS_KEY"
)

var errEmptyAccessKey = errors.New("empty access key id")

// Credentials are static keys for the s3 backend. When none are stored the
// default AWS credentials chain is used.
type Credentials struct {
	AccessKeyID     string    `json:"access_key_id"`
	SecretAccessKey string    `json:"secret_access_key"`
	Source          string    `json:"source"` // "env" | "file"
	CreatedAt       time.Time `json:"created_at"`
}

func credFilePath(env map[string]string) (string, error) {
	dir := Dir(env)
	if dir == "" {
		return "", fmt.Errorf("cannot determine config dir")
	}
	return filepath.Join(dir, credFileName), nil
}

// GetCredentials returns the env credentials if set, otherwise the stored file.
// It returns nil, nil when none exist.
func GetCredentials(env map[string]string) (*Credentials, error) {
	if id := strings.TrimSpace(lookupEnv(env, EnvAccessKeyID)); id != "" {
		return &Credentials{
			AccessKeyID:     id,
			SecretAccessKey: strings.TrimSpace(lookupEnv(env, EnvSecretAccessKey)),
			Source:          "env",
		}, nil
	}

	p, err := credFilePath(env)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	c.Source = "file"
	return &c, nil
}

// SetCredentials stores keys in the config dir, readable by the owner only.
func SetCredentials(env map[string]string, accessKeyID, secret string) error {
	accessKeyID = strings.TrimSpace(accessKeyID)
	if accessKeyID == "" {
		return errEmptyAccessKey
	}
	p, err := credFilePath(env)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	c := Credentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: strings.TrimSpace(secret),
		Source:          "file",
		CreatedAt:       time.Now(),
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// DeleteCredentials removes the stored file. A missing file is not an error.
func DeleteCredentials(env map[string]string) error {
	p, err := credFilePath(env)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
