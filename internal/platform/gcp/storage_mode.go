package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

// StorageConfig selects the bucket backing the remote media store.
type StorageConfig struct {
	Mode          StorageMode
	Bucket        string
	EmulatorHost  string
	PublicBaseURL string
	CDNDomain     string
	// CredentialsJSON is either inline JSON or a path to a credentials file.
	CredentialsJSON string
}

func (cfg StorageConfig) IsEmulatorMode() bool { return cfg.Mode == StorageModeGCSEmulator }

type StorageConfigErrorCode string

const (
	StorageConfigErrorInvalidMode         StorageConfigErrorCode = "invalid_mode"
	StorageConfigErrorMissingBucket       StorageConfigErrorCode = "missing_bucket"
	StorageConfigErrorMissingEmulatorHost StorageConfigErrorCode = "missing_emulator_host"
	StorageConfigErrorInvalidURL          StorageConfigErrorCode = "invalid_url"
)

type StorageConfigError struct {
	Code  StorageConfigErrorCode
	Field string
	Value string
	Cause error
}

func (e *StorageConfigError) Error() string {
	if e == nil {
		return "invalid storage config"
	}
	switch e.Code {
	case StorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid MEDIA_MODE=%q (allowed: %q, %q)", e.Value, StorageModeGCS, StorageModeGCSEmulator)
	case StorageConfigErrorMissingBucket:
		return "MEDIA_GCS_BUCKET is required for remote media"
	case StorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("MEDIA_MODE=%q requires STORAGE_EMULATOR_HOST", StorageModeGCSEmulator)
	case StorageConfigErrorInvalidURL:
		return fmt.Sprintf("invalid %s=%q; expected absolute URL like http://fake-gcs:4443", e.Field, e.Value)
	default:
		return "invalid storage config"
	}
}

func (e *StorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ParseStorageMode accepts the remote MEDIA_MODE values.
func ParseStorageMode(raw string) (StorageMode, error) {
	switch m := StorageMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case StorageModeGCS, StorageModeGCSEmulator:
		return m, nil
	default:
		return "", &StorageConfigError{Code: StorageConfigErrorInvalidMode, Field: "MEDIA_MODE", Value: raw}
	}
}

func ValidateStorageConfig(cfg StorageConfig) error {
	if _, err := ParseStorageMode(string(cfg.Mode)); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return &StorageConfigError{Code: StorageConfigErrorMissingBucket, Field: "MEDIA_GCS_BUCKET"}
	}
	if cfg.IsEmulatorMode() {
		if strings.TrimSpace(cfg.EmulatorHost) == "" {
			return &StorageConfigError{Code: StorageConfigErrorMissingEmulatorHost, Field: "STORAGE_EMULATOR_HOST"}
		}
		if err := validateAbsoluteURL("STORAGE_EMULATOR_HOST", cfg.EmulatorHost); err != nil {
			return err
		}
	}
	if strings.TrimSpace(cfg.PublicBaseURL) != "" {
		if err := validateAbsoluteURL("MEDIA_PUBLIC_BASE_URL", cfg.PublicBaseURL); err != nil {
			return err
		}
	}
	return nil
}

func validateAbsoluteURL(field, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &StorageConfigError{Code: StorageConfigErrorInvalidURL, Field: field, Value: raw, Cause: err}
	}
	return nil
}
