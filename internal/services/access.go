package services

import (
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
)

// DraftPolicy decides whether actor may see a Draft course. actor is zero for
// anonymous callers.
type DraftPolicy func(course *types.Course, actor ctxutil.Actor) bool

// OwnerOrAdmin lets the course instructor and admins see drafts.
func OwnerOrAdmin(course *types.Course, actor ctxutil.Actor) bool {
	return canManage(course, actor)
}

func canManage(course *types.Course, actor ctxutil.Actor) bool {
	if course == nil || actor.IsZero() {
		return false
	}
	return actor.IsAdmin() || actor.UserID == course.InstructorID
}

func requireActor(actor ctxutil.Actor) error {
	if actor.IsZero() {
		return apierr.Unauthorized("authentication required")
	}
	return nil
}

func requireInstructor(actor ctxutil.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.Role != ctxutil.RoleInstructor && !actor.IsAdmin() {
		return apierr.Forbidden("only instructors can do this")
	}
	return nil
}

// requireOwner checks actor may change course.
func requireOwner(course *types.Course, actor ctxutil.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !canManage(course, actor) {
		return apierr.Forbidden("course %s belongs to another instructor", course.ID)
	}
	return nil
}
