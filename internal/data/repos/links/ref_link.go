package links

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/studynotion-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

// RefLinkRepo stores every ordered id list as rows of ref_link. A list is the
// rows for (field, parent) ordered by id.
type RefLinkRepo interface {
	// Link appends child to the parent's list with a single insert.
	Link(dbc dbctx.Context, field types.LinkField, parentID, childID uuid.UUID) error
	// Unlink removes the oldest occurrence of child. Reports whether a row was removed.
	Unlink(dbc dbctx.Context, field types.LinkField, parentID, childID uuid.UUID) (bool, error)
	Children(dbc dbctx.Context, field types.LinkField, parentID uuid.UUID) ([]uuid.UUID, error)
	ChildrenOf(dbc dbctx.Context, field types.LinkField, parentIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	Parents(dbc dbctx.Context, field types.LinkField, childID uuid.UUID) ([]uuid.UUID, error)
	Count(dbc dbctx.Context, field types.LinkField, parentID uuid.UUID) (int64, error)
	DeleteByParent(dbc dbctx.Context, field types.LinkField, parentIDs []uuid.UUID) (int64, error)
	DeleteByChild(dbc dbctx.Context, field types.LinkField, childIDs []uuid.UUID) (int64, error)
	ListStale(dbc dbctx.Context) ([]*types.RefLink, error)
	DeleteByIDs(dbc dbctx.Context, ids []uint) (int64, error)
}

type refLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRefLinkRepo(db *gorm.DB, baseLog *logger.Logger) RefLinkRepo {
	return &refLinkRepo{db: db, log: baseLog.With("repo", "RefLinkRepo")}
}

func checkField(field types.LinkField) error {
	if !field.Valid() {
		return apierr.Validation("unknown link field %q", field)
	}
	return nil
}

func (r *refLinkRepo) Link(dbc dbctx.Context, field types.LinkField, parentID, childID uuid.UUID) error {
	if err := checkField(field); err != nil {
		return err
	}
	if parentID == uuid.Nil || childID == uuid.Nil {
		return apierr.Validation("link %s: parent and child ids required", field)
	}
	row := &types.RefLink{Field: field, ParentID: parentID, ChildID: childID}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return fmt.Errorf("link %s %s->%s: %w", field, parentID, childID, err)
	}
	return nil
}

func (r *refLinkRepo) Unlink(dbc dbctx.Context, field types.LinkField, parentID, childID uuid.UUID) (bool, error) {
	if err := checkField(field); err != nil {
		return false, err
	}
	db := dbc.DB(r.db)
	oldest := db.Session(&gorm.Session{NewDB: true}).
		Model(&types.RefLink{}).
		Select("MIN(id)").
		Where("field = ? AND parent_id = ? AND child_id = ?", field, parentID, childID)
	res := db.Where("id = (?)", oldest).Delete(&types.RefLink{})
	if res.Error != nil {
		return false, fmt.Errorf("unlink %s %s->%s: %w", field, parentID, childID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *refLinkRepo) Children(dbc dbctx.Context, field types.LinkField, parentID uuid.UUID) ([]uuid.UUID, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	if err := dbc.DB(r.db).Model(&types.RefLink{}).
		Where("field = ? AND parent_id = ?", field, parentID).
		Order("id ASC").
		Pluck("child_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("children %s of %s: %w", field, parentID, err)
	}
	return ids, nil
}

func (r *refLinkRepo) ChildrenOf(dbc dbctx.Context, field types.LinkField, parentIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	out := map[uuid.UUID][]uuid.UUID{}
	parentIDs = repoutil.Dedupe(parentIDs)
	if len(parentIDs) == 0 {
		return out, nil
	}
	var rows []*types.RefLink
	if err := dbc.DB(r.db).
		Where("field = ? AND parent_id IN ?", field, parentIDs).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("children %s: %w", field, err)
	}
	for _, row := range rows {
		out[row.ParentID] = append(out[row.ParentID], row.ChildID)
	}
	return out, nil
}

func (r *refLinkRepo) Parents(dbc dbctx.Context, field types.LinkField, childID uuid.UUID) ([]uuid.UUID, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	if err := dbc.DB(r.db).Model(&types.RefLink{}).
		Where("field = ? AND child_id = ?", field, childID).
		Order("id ASC").
		Pluck("parent_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("parents %s of %s: %w", field, childID, err)
	}
	return repoutil.Dedupe(ids), nil
}

func (r *refLinkRepo) Count(dbc dbctx.Context, field types.LinkField, parentID uuid.UUID) (int64, error) {
	if err := checkField(field); err != nil {
		return 0, err
	}
	var n int64
	if err := dbc.DB(r.db).Model(&types.RefLink{}).
		Where("field = ? AND parent_id = ?", field, parentID).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s of %s: %w", field, parentID, err)
	}
	return n, nil
}

func (r *refLinkRepo) DeleteByParent(dbc dbctx.Context, field types.LinkField, parentIDs []uuid.UUID) (int64, error) {
	if err := checkField(field); err != nil {
		return 0, err
	}
	parentIDs = repoutil.Dedupe(parentIDs)
	if len(parentIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("field = ? AND parent_id IN ?", field, parentIDs).Delete(&types.RefLink{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s by parent: %w", field, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *refLinkRepo) DeleteByChild(dbc dbctx.Context, field types.LinkField, childIDs []uuid.UUID) (int64, error) {
	if err := checkField(field); err != nil {
		return 0, err
	}
	childIDs = repoutil.Dedupe(childIDs)
	if len(childIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("field = ? AND child_id IN ?", field, childIDs).Delete(&types.RefLink{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s by child: %w", field, res.Error)
	}
	return res.RowsAffected, nil
}

// ListStale returns rows whose parent or child record no longer exists.
func (r *refLinkRepo) ListStale(dbc dbctx.Context) ([]*types.RefLink, error) {
	db := dbc.DB(r.db)
	var out []*types.RefLink
	for _, field := range types.LinkFields() {
		parent, child := field.Tables()
		exists := func(table, col string) *gorm.DB {
			return db.Session(&gorm.Session{NewDB: true}).
				Table("? AS t", clause.Table{Name: table}).
				Select("1").
				Where("t.id = ref_link." + col)
		}
		var rows []*types.RefLink
		err := db.Session(&gorm.Session{NewDB: true}).
			Where("field = ?", field).
			Where(db.Session(&gorm.Session{NewDB: true}).
				Where("NOT EXISTS (?)", exists(parent, "parent_id")).
				Or("NOT EXISTS (?)", exists(child, "child_id"))).
			Order("id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("list stale %s links: %w", field, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (r *refLinkRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.RefLink{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete links: %w", res.Error)
	}
	return res.RowsAffected, nil
}
