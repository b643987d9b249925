package services

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

// CreateCourseInput carries tag and instructions in their serialized JSON form.
type CreateCourseInput struct {
	CourseName        string
	CourseDescription string
	WhatYouWillLearn  string
	Price             *float64
	CategoryID        uuid.UUID
	Tag               string
	Instructions      string
	Status            string
	Thumbnail         *media.Blob
}

// CoursePatch is a sparse update. Nil fields are left as they are.
type CoursePatch struct {
	CourseName        *string
	CourseDescription *string
	WhatYouWillLearn  *string
	Price             *float64
	CategoryID        *uuid.UUID
	Tag               *string
	Instructions      *string
	Status            *string
}

func (p CoursePatch) Empty() bool {
	return p.CourseName == nil && p.CourseDescription == nil && p.WhatYouWillLearn == nil &&
		p.Price == nil && p.CategoryID == nil && p.Tag == nil && p.Instructions == nil && p.Status == nil
}

type SectionPatch struct {
	SectionName *string
}

type SubSectionInput struct {
	SectionID    uuid.UUID
	Title        string
	Description  string
	TimeDuration string
	Video        *media.Blob
}

type SubSectionPatch struct {
	Title        *string
	Description  *string
	TimeDuration *string
}

func (p SubSectionPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.TimeDuration == nil
}

// parseStringList decodes a serialized ordered list of strings. The list must
// be non-empty and hold no blank entries.
func parseStringList(field, raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apierr.Validation("%s is required", field)
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, apierr.Validation("%s must be a JSON array of strings", field)
	}
	if len(out) == 0 {
		return nil, apierr.Validation("%s must not be empty", field)
	}
	for i, s := range out {
		out[i] = strings.TrimSpace(s)
		if out[i] == "" {
			return nil, apierr.Validation("%s[%d] is blank", field, i)
		}
	}
	return out, nil
}

func normalizeStatus(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return types.CourseStatusDraft, nil
	case "draft":
		return types.CourseStatusDraft, nil
	case "published":
		return types.CourseStatusPublished, nil
	default:
		return "", apierr.Validation("status must be Draft or Published")
	}
}

// requireFields takes name, value pairs and reports every blank value.
func requireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return apierr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
