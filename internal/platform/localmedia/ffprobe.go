package localmedia

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/studynotion-backend/internal/pkg/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

// FFProbe reads container durations by shelling out to ffprobe.
type FFProbe struct {
	log     *logger.Logger
	bin     string
	timeout time.Duration
}

func NewFFProbe(log *logger.Logger, bin string) *FFProbe {
	if strings.TrimSpace(bin) == "" {
		bin = "ffprobe"
	}
	return &FFProbe{
		log:     log.With("service", "FFProbe"),
		bin:     bin,
		timeout: 30 * time.Second,
	}
}

// AssertReady fails when the ffprobe binary is not on PATH.
func (p *FFProbe) AssertReady() error {
	if _, err := exec.LookPath(p.bin); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", p.bin, err)
	}
	return nil
}

func (p *FFProbe) Probe(ctx context.Context, localPath string) (float64, error) {
	if localPath == "" {
		return 0, fmt.Errorf("localPath required")
	}
	ctx, cancel := ctxutil.Bounded(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		localPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w; out=%s", err, strings.TrimSpace(string(out)))
	}
	return parseProbeOutput(string(out))
}

func parseProbeOutput(out string) (float64, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "N/A" {
			continue
		}
		secs, err := strconv.ParseFloat(line, 64)
		if err != nil || secs < 0 {
			continue
		}
		return secs, nil
	}
	return 0, fmt.Errorf("ffprobe output missing duration")
}
