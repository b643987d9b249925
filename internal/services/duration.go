package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
)

// maxDurationSeconds bounds a parsed length and the running total. Floats
// stay exact below it and sums of two never overflow int64.
const maxDurationSeconds int64 = 1 << 53

// ParseDuration reads a sub-section length as whole or decimal seconds,
// HH:MM:SS or MM:SS. Anything else, including negative values, counts as zero.
func ParseDuration(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if !strings.Contains(s, ":") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 || math.IsNaN(f) || f >= float64(maxDurationSeconds) {
			return 0
		}
		return int64(f)
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}
	nums := make([]int64, len(parts))
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return 0
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0
		}
		// Only the leading component may exceed 59.
		if i > 0 && n > 59 {
			return 0
		}
		nums[i] = n
	}
	if len(nums) == 2 {
		if nums[0] > (maxDurationSeconds-60)/60 {
			return 0
		}
		return nums[0]*60 + nums[1]
	}
	if nums[0] > (maxDurationSeconds-3600)/3600 {
		return 0
	}
	return nums[0]*3600 + nums[1]*60 + nums[2]
}

// FormatDuration renders seconds as HH:MM:SS. Hours are not capped at 99.
func FormatDuration(sec int64) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

// TotalDuration sums every sub-section of tree in section order. The sum
// saturates at maxDurationSeconds.
func TotalDuration(tree *aggregates.CourseTree) string {
	var total int64
	if tree != nil {
		for _, section := range tree.CourseContent {
			if section == nil {
				continue
			}
			for _, ss := range section.SubSection {
				if ss != nil {
					total = min(total+ParseDuration(ss.TimeDuration), maxDurationSeconds)
				}
			}
		}
	}
	return FormatDuration(total)
}
