package portfolio

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrConfig = errors.New("portfolio: invalid config")

const DefaultMaxResumeBytes int64 = 10 << 20

// Config controls the upload route and the object store behind it.
// An empty S3Bucket selects the in-memory store.
type Config struct {
	MaxResumeBytes int64
	MaxJSONBytes   int64
	KeyPrefix      string

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
}

func DefaultConfig() Config {
	return Config{
		MaxResumeBytes: DefaultMaxResumeBytes,
		MaxJSONBytes:   64 << 10,
		KeyPrefix:      "resumes/",
		S3Region:       "us-east-1",
	}
}

func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("FOLIO_RESUME_MAX_BYTES")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 || n > 100<<20 {
			return Config{}, fmt.Errorf("%w: FOLIO_RESUME_MAX_BYTES must be in 1..%d", ErrConfig, 100<<20)
		}
		cfg.MaxResumeBytes = n
	}
	if v := strings.TrimSpace(os.Getenv("FOLIO_RESUME_KEY_PREFIX")); v != "" {
		cfg.KeyPrefix = strings.TrimPrefix(v, "/")
		if !strings.HasSuffix(cfg.KeyPrefix, "/") {
			cfg.KeyPrefix += "/"
		}
	}

	cfg.S3Bucket = strings.TrimSpace(os.Getenv("FOLIO_S3_BUCKET"))
	if v := strings.TrimSpace(os.Getenv("FOLIO_S3_REGION")); v != "" {
		cfg.S3Region = v
	}
	cfg.S3Endpoint = strings.TrimSpace(os.Getenv("FOLIO_S3_ENDPOINT"))
	cfg.S3AccessKeyID = strings.TrimSpace(os.Getenv("FOLIO_S3_ACCESS_KEY_ID"))
	cfg.S3SecretAccessKey = strings.TrimSpace(os.Getenv("FOLIO_S3_SECRET_ACCESS_KEY"))
	if v := strings.TrimSpace(os.Getenv("FOLIO_S3_USE_PATH_STYLE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: FOLIO_S3_USE_PATH_STYLE: %v", ErrConfig, err)
		}
		cfg.S3UsePathStyle = b
	}

	if (cfg.S3AccessKeyID == "") != (cfg.S3SecretAccessKey == "") {
		return Config{}, fmt.Errorf("%w: FOLIO_S3_ACCESS_KEY_ID and FOLIO_S3_SECRET_ACCESS_KEY must be set together", ErrConfig)
	}

	return cfg, nil
}
