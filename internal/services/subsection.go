package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

type SubSectionService interface {
	AttachSubSection(ctx context.Context, actor ctxutil.Actor, in SubSectionInput) (*aggregates.SectionNode, error)
	UpdateSubSection(ctx context.Context, actor ctxutil.Actor, subSectionID uuid.UUID, patch SubSectionPatch, video *media.Blob) (*aggregates.SectionNode, error)
	DetachSubSection(ctx context.Context, actor ctxutil.Actor, subSectionID uuid.UUID) (*aggregates.SectionNode, error)
}

type subSectionService struct {
	*hierarchy
}

func NewSubSectionService(deps HierarchyDeps) SubSectionService {
	return &subSectionService{hierarchy: newHierarchy(deps, "SubSectionService")}
}

// parentSection loads a section for a child mutation and checks ownership of
// its course.
func (s *subSectionService) parentSection(ctx context.Context, actor ctxutil.Actor, sectionID uuid.UUID) (*types.Section, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	section, err := s.deps.Sections.GetByID(s.dbc(ctx), sectionID)
	if err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return nil, apierr.InvalidReference("section %s not found", sectionID)
		}
		return nil, err
	}
	if _, err := s.ownedCourse(ctx, actor, section.CourseID); err != nil {
		return nil, err
	}
	return section, nil
}

// sectionNode returns the section with its sub-sections in link order.
func (s *subSectionService) sectionNode(ctx context.Context, section *types.Section) (*aggregates.SectionNode, error) {
	dbc := s.dbc(ctx)
	ids, err := s.deps.Links.Children(dbc, types.FieldSectionSubSection, section.ID)
	if err != nil {
		return nil, err
	}
	subs, err := s.deps.SubSections.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	return &aggregates.SectionNode{Section: section, SubSection: subs}, nil
}

func (s *subSectionService) AttachSubSection(ctx context.Context, actor ctxutil.Actor, in SubSectionInput) (out *aggregates.SectionNode, err error) {
	ctx, span := observability.StartSpan(ctx, "subsection.attach", attribute.String("section.id", in.SectionID.String()))
	defer func() { observability.EndSpan(span, err) }()

	if in.SectionID == uuid.Nil {
		return nil, apierr.Validation("missing required fields: sectionId")
	}
	if err := requireFields("title", in.Title, "description", in.Description); err != nil {
		return nil, err
	}
	if in.Video.Empty() {
		return nil, apierr.Validation("video file is required")
	}
	section, err := s.parentSection(ctx, actor, in.SectionID)
	if err != nil {
		return nil, err
	}

	saved, err := s.deps.Media.Save(ctx, *in.Video, media.KindVideo)
	if err != nil {
		return nil, err
	}
	video := toMediaRef(saved)
	duration := saved.Duration
	if duration == "" {
		duration = strings.TrimSpace(in.TimeDuration)
	}

	dbc := s.dbc(ctx)
	sub := &types.SubSection{
		ID:           uuid.New(),
		SectionID:    section.ID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		TimeDuration: duration,
		Video:        video,
	}
	if _, err := s.deps.SubSections.Create(dbc, []*types.SubSection{sub}); err != nil {
		s.discardMedia(ctx, video, "subsection.attach")
		return nil, err
	}
	if err := s.deps.Links.Link(dbc, types.FieldSectionSubSection, section.ID, sub.ID); err != nil {
		if _, derr := s.deps.SubSections.DeleteByIDs(dbc, []uuid.UUID{sub.ID}); derr != nil {
			s.log.Error("Failed to remove unlinked sub-section", "sub_section_id", sub.ID, "error", derr)
		}
		s.discardMedia(ctx, video, "subsection.attach")
		return nil, err
	}
	s.invalidate(ctx, section.CourseID)
	return s.sectionNode(ctx, section)
}

func (s *subSectionService) UpdateSubSection(ctx context.Context, actor ctxutil.Actor, subSectionID uuid.UUID, patch SubSectionPatch, video *media.Blob) (out *aggregates.SectionNode, err error) {
	ctx, span := observability.StartSpan(ctx, "subsection.update", attribute.String("sub_section.id", subSectionID.String()))
	defer func() { observability.EndSpan(span, err) }()

	dbc := s.dbc(ctx)
	sub, err := s.deps.SubSections.GetByID(dbc, subSectionID)
	if err != nil {
		return nil, err
	}
	section, err := s.parentSection(ctx, actor, sub.SectionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		v := strings.TrimSpace(*patch.Title)
		if v == "" {
			return nil, apierr.Validation("title must not be blank")
		}
		updates["title"] = v
	}
	if patch.Description != nil {
		v := strings.TrimSpace(*patch.Description)
		if v == "" {
			return nil, apierr.Validation("description must not be blank")
		}
		updates["description"] = v
	}
	if patch.TimeDuration != nil {
		updates["time_duration"] = strings.TrimSpace(*patch.TimeDuration)
	}
	if len(updates) == 0 && video.Empty() {
		return s.sectionNode(ctx, section)
	}

	var newVideo types.MediaRef
	if !video.Empty() {
		saved, err := s.deps.Media.Save(ctx, *video, media.KindVideo)
		if err != nil {
			return nil, err
		}
		newVideo = toMediaRef(saved)
		for k, v := range mediaColumns("video_", newVideo) {
			updates[k] = v
		}
		if saved.Duration != "" {
			updates["time_duration"] = saved.Duration
		}
	}
	if err := s.deps.SubSections.UpdateFields(dbc, subSectionID, updates); err != nil {
		s.discardMedia(ctx, newVideo, "subsection.update")
		return nil, err
	}
	if !newVideo.IsZero() && sub.Video.Key != newVideo.Key {
		if err := s.deleteMedia(ctx, sub.Video); err != nil {
			s.log.Warn("Failed to delete replaced video", "sub_section_id", subSectionID, "key", sub.Video.Key, "error", err)
		}
	}
	s.invalidate(ctx, section.CourseID)
	return s.sectionNode(ctx, section)
}

// DetachSubSection deletes the video, then the link, then the record. Each
// step aborts on failure so a retry can resume.
func (s *subSectionService) DetachSubSection(ctx context.Context, actor ctxutil.Actor, subSectionID uuid.UUID) (out *aggregates.SectionNode, err error) {
	ctx, span := observability.StartSpan(ctx, "subsection.detach", attribute.String("sub_section.id", subSectionID.String()))
	defer func() { observability.EndSpan(span, err) }()

	dbc := s.dbc(ctx)
	sub, err := s.deps.SubSections.GetByID(dbc, subSectionID)
	if err != nil {
		return nil, err
	}
	section, err := s.parentSection(ctx, actor, sub.SectionID)
	if err != nil {
		return nil, err
	}
	if err := s.deleteMedia(ctx, sub.Video); err != nil {
		return nil, err
	}
	if _, err := s.deps.Links.Unlink(dbc, types.FieldSectionSubSection, section.ID, subSectionID); err != nil {
		return nil, err
	}
	if _, err := s.deps.SubSections.DeleteByIDs(dbc, []uuid.UUID{subSectionID}); err != nil {
		return nil, err
	}
	s.invalidate(ctx, section.CourseID)
	return s.sectionNode(ctx, section)
}
