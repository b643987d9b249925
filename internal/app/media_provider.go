package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/studynotion-backend/internal/platform/gcp"
	"github.com/yungbote/studynotion-backend/internal/platform/localmedia"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

var newGCSMediaStore = func(ctx context.Context, log *logger.Logger, cfg gcp.StorageConfig) (media.Store, error) {
	return gcp.NewMediaStore(ctx, log, cfg)
}

type MediaBootstrapErrorCode string

const (
	MediaBootstrapErrorInvalidMode         MediaBootstrapErrorCode = "invalid_mode"
	MediaBootstrapErrorMissingBucket       MediaBootstrapErrorCode = "missing_bucket"
	MediaBootstrapErrorMissingEmulatorHost MediaBootstrapErrorCode = "missing_emulator_host"
	MediaBootstrapErrorInvalidURL          MediaBootstrapErrorCode = "invalid_url"
	MediaBootstrapErrorConnectFailed       MediaBootstrapErrorCode = "connect_failed"
)

type MediaBootstrapError struct {
	Code         MediaBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *MediaBootstrapError) Error() string {
	if e == nil {
		return "media store bootstrap failed"
	}
	return fmt.Sprintf(
		"media store bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *MediaBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// MediaProvider is the selected media backend. StaticDir is set only for the
// local backend, whose files the router serves under StaticPrefix.
type MediaProvider struct {
	Store        media.Store
	StaticDir    string
	StaticPrefix string
}

func resolveMediaStore(ctx context.Context, log *logger.Logger, cfg Config) (MediaProvider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.MediaMode))
	if mode == "" || mode == MediaModeLocal {
		return resolveLocalMedia(log, cfg)
	}

	storageCfg := gcp.StorageConfig{
		Mode:            gcp.StorageMode(mode),
		Bucket:          strings.TrimSpace(cfg.MediaGCSBucket),
		EmulatorHost:    strings.TrimSpace(cfg.StorageEmulatorHost),
		CDNDomain:       strings.TrimSpace(cfg.MediaCDNDomain),
		CredentialsJSON: cfg.GCPCredentials,
	}
	log.Info(
		"Selecting media store",
		"mode", storageCfg.Mode,
		"bucket", storageCfg.Bucket,
		"emulator_host", storageCfg.EmulatorHost,
	)
	store, err := newGCSMediaStore(ctx, log, storageCfg)
	if err != nil {
		classified := classifyMediaBootstrapError(storageCfg, err)
		log.Error(
			"Media store bootstrap failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", mediaBootstrapErrorCode(classified),
			"error", classified,
		)
		return MediaProvider{}, classified
	}
	return MediaProvider{Store: instrumentMediaStore(store)}, nil
}

func resolveLocalMedia(log *logger.Logger, cfg Config) (MediaProvider, error) {
	probe := localmedia.NewFFProbe(log, cfg.FFProbePath)
	storeCfg := localmedia.StoreConfig{
		Root:         cfg.MediaRoot,
		PublicPrefix: cfg.MediaPublicPrefix,
	}
	if err := probe.AssertReady(); err != nil {
		log.Warn("ffprobe unavailable; video durations fall back to client values", "error", err)
	} else {
		storeCfg.Prober = probe
	}
	store, err := localmedia.NewStore(log, storeCfg)
	if err != nil {
		return MediaProvider{}, fmt.Errorf("init local media: %w", err)
	}
	log.Info("Selecting media store", "mode", MediaModeLocal, "root", store.Root())
	return MediaProvider{
		Store:        instrumentMediaStore(store),
		StaticDir:    store.Root(),
		StaticPrefix: cfg.MediaPublicPrefix,
	}, nil
}

func classifyMediaBootstrapError(storageCfg gcp.StorageConfig, err error) error {
	code := MediaBootstrapErrorConnectFailed
	var cfgErr *gcp.StorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.StorageConfigErrorInvalidMode:
			code = MediaBootstrapErrorInvalidMode
		case gcp.StorageConfigErrorMissingBucket:
			code = MediaBootstrapErrorMissingBucket
		case gcp.StorageConfigErrorMissingEmulatorHost:
			code = MediaBootstrapErrorMissingEmulatorHost
		case gcp.StorageConfigErrorInvalidURL:
			code = MediaBootstrapErrorInvalidURL
		}
	}
	return &MediaBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func mediaBootstrapErrorCode(err error) MediaBootstrapErrorCode {
	var bootstrapErr *MediaBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return MediaBootstrapErrorConnectFailed
}
