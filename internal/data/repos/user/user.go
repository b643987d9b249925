package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	ListImageKeys(dbc dbctx.Context, publicPrefix string) ([]string, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	}
	if err := dbc.DB(r.db).Create(&users).Error; err != nil {
		if repoutil.IsUniqueViolation(err) {
			return nil, apierr.Validation("email already registered")
		}
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	var u types.User
	if err := dbc.DB(r.db).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, repoutil.NotFound(err, "user", id)
	}
	return &u, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	ids = repoutil.Dedupe(ids)
	var out []*types.User
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return repoutil.OrderByIDs(ids, out, func(u *types.User) uuid.UUID { return u.ID }), nil
}

// GetByEmail returns (nil, nil) when no account uses email.
func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	var u types.User
	err := dbc.DB(r.db).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// ListImageKeys returns store keys for avatars served from publicPrefix.
// External avatar URLs are skipped.
func (r *userRepo) ListImageKeys(dbc dbctx.Context, publicPrefix string) ([]string, error) {
	var images []string
	if err := dbc.DB(r.db).Model(&types.User{}).Where("image <> ''").Pluck("image", &images).Error; err != nil {
		return nil, fmt.Errorf("list user images: %w", err)
	}
	prefix := "/" + strings.Trim(publicPrefix, "/") + "/"
	out := make([]string, 0, len(images))
	for _, img := range images {
		if rest, ok := strings.CutPrefix(img, prefix); ok {
			out = append(out, rest)
		}
	}
	return out, nil
}

func (r *userRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.User{}).Where("id = ?", id).Updates(repoutil.Touch(updates))
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repoutil.NotFound(gorm.ErrRecordNotFound, "user", id)
	}
	return nil
}
