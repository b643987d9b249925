package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/studynotion-backend/internal/clients/redis"
	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
	"github.com/yungbote/studynotion-backend/internal/data/repos"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

const (
	cacheViewPublic = "public"
	cacheViewFull   = "full"
)

// HierarchyDeps is shared by the course, section and sub-section services.
type HierarchyDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Courses     repos.CourseRepo
	Sections    repos.SectionRepo
	SubSections repos.SubSectionRepo
	Categories  repos.CategoryRepo
	Users       repos.UserRepo
	Progress    repos.CourseProgressRepo
	Links       repos.RefLinkRepo

	Resolver aggregates.CourseTreeResolver
	Media    media.Store
	Cache    redisclient.CourseCache
	Ledger   CascadeLedger

	// DraftGate hides Draft courses from callers DraftPolicy rejects.
	DraftGate   bool
	DraftPolicy DraftPolicy
}

type hierarchy struct {
	deps HierarchyDeps
	log  *logger.Logger
}

func newHierarchy(deps HierarchyDeps, name string) *hierarchy {
	if deps.Cache == nil {
		deps.Cache = redisclient.NoopCourseCache()
	}
	if deps.DraftPolicy == nil {
		deps.DraftPolicy = OwnerOrAdmin
	}
	return &hierarchy{deps: deps, log: deps.Log.With("service", name)}
}

func (h *hierarchy) dbc(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}

// invalidate drops cached trees. A failure only costs staleness until the TTL.
func (h *hierarchy) invalidate(ctx context.Context, courseIDs ...uuid.UUID) {
	if err := h.deps.Cache.Invalidate(ctx, courseIDs...); err != nil {
		h.log.Warn("Course cache invalidation failed", "course_ids", courseIDs, "error", err)
	}
}

// deleteMedia removes a stored file; an empty reference is a no-op.
func (h *hierarchy) deleteMedia(ctx context.Context, ref types.MediaRef) error {
	if ref.IsZero() {
		return nil
	}
	return h.deps.Media.Delete(ctx, fromMediaRef(ref))
}

// discardMedia deletes a file written by an operation that then failed.
func (h *hierarchy) discardMedia(ctx context.Context, ref types.MediaRef, op string) {
	if err := h.deleteMedia(ctx, ref); err != nil {
		h.log.Error("Failed to discard uploaded media", "op", op, "key", ref.Key, "error", err)
	}
}

func toMediaRef(r media.Ref) types.MediaRef {
	return types.MediaRef{Key: r.Key, URL: r.URL, MimeType: r.MimeType, SizeBytes: r.SizeBytes}
}

func fromMediaRef(m types.MediaRef) media.Ref {
	return media.Ref{Key: m.Key, URL: m.URL, MimeType: m.MimeType, SizeBytes: m.SizeBytes}
}

func mediaColumns(prefix string, ref types.MediaRef) map[string]interface{} {
	return map[string]interface{}{
		prefix + "key":        ref.Key,
		prefix + "url":        ref.URL,
		prefix + "mime_type":  ref.MimeType,
		prefix + "size_bytes": ref.SizeBytes,
	}
}

// sectionIDsOf merges linked and owned sections so cleanup also reaches
// sections whose course_content link was lost.
func (h *hierarchy) sectionIDsOf(dbc dbctx.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	linked, err := h.deps.Links.Children(dbc, types.FieldCourseContent, courseID)
	if err != nil {
		return nil, err
	}
	owned, err := h.deps.Sections.ListByCourseID(dbc, courseID)
	if err != nil {
		return linked, err
	}
	for _, s := range owned {
		linked = append(linked, s.ID)
	}
	return dedupe(linked), nil
}

// unlinkAll removes every occurrence of child from the parent's list. Racing
// appends can leave the same child listed more than once.
func (h *hierarchy) unlinkAll(dbc dbctx.Context, field types.LinkField, parentID, childID uuid.UUID) error {
	for {
		removed, err := h.deps.Links.Unlink(dbc, field, parentID, childID)
		if err != nil || !removed {
			return err
		}
	}
}

// deleteSectionTree removes each sub-section (video first, then record), the
// section's sub-section links and finally the section record.
func (h *hierarchy) deleteSectionTree(ctx context.Context, c *cascade, sectionID uuid.UUID) {
	dbc := h.dbc(ctx)
	subIDs, err := h.deps.Links.Children(dbc, types.FieldSectionSubSection, sectionID)
	if err != nil {
		c.record(StepDeleteSubSection, sectionID.String(), err)
	}
	owned, err := h.deps.SubSections.ListBySectionIDs(dbc, []uuid.UUID{sectionID})
	if err != nil {
		c.record(StepDeleteSubSection, sectionID.String(), err)
	}
	for _, s := range owned {
		subIDs = append(subIDs, s.ID)
	}
	subs, err := h.deps.SubSections.GetByIDs(dbc, dedupe(subIDs))
	if err != nil {
		c.record(StepDeleteSubSection, sectionID.String(), err)
	}
	for _, ss := range subs {
		if !ss.Video.IsZero() {
			c.record(StepDeleteVideo, ss.Video.Key, h.deleteMedia(ctx, ss.Video))
		}
		_, err := h.deps.SubSections.DeleteByIDs(dbc, []uuid.UUID{ss.ID})
		c.record(StepDeleteSubSection, ss.ID.String(), err)
	}
	_, err = h.deps.Links.DeleteByParent(dbc, types.FieldSectionSubSection, []uuid.UUID{sectionID})
	c.record(StepUnlinkSubSection, sectionID.String(), err)
	_, err = h.deps.Sections.DeleteByIDs(dbc, []uuid.UUID{sectionID})
	c.record(StepDeleteSection, sectionID.String(), err)
}

// beginLedger opens a ledger run; without one the cascade still runs.
func (h *hierarchy) beginLedger(ctx context.Context, c *cascade, actorID uuid.UUID) {
	if h.deps.Ledger == nil {
		return
	}
	runID, err := h.deps.Ledger.Begin(ctx, c.report.Kind, c.report.TargetID, actorID)
	if err != nil {
		h.log.Warn("Cascade ledger unavailable", "target_id", c.report.TargetID, "error", err)
		return
	}
	c.report.RunID = runID
}

func (h *hierarchy) finishLedger(ctx context.Context, c *cascade) {
	if h.deps.Ledger == nil || c.report.RunID == uuid.Nil {
		return
	}
	if err := h.deps.Ledger.Finish(ctx, c.report); err != nil {
		h.log.Warn("Failed to record cascade outcome", "run_id", c.report.RunID, "error", err)
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
