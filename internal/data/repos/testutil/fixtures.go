package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/studynotion-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, accountType string) *types.User {
	tb.Helper()
	id := uuid.New()
	u := &types.User{
		ID:          id,
		FirstName:   "A",
		LastName:    "B",
		Email:       id.String() + "@example.com",
		AccountType: accountType,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, u *types.User) *types.Profile {
	tb.Helper()
	p := &types.Profile{ID: uuid.New(), About: "about"}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	if err := tx.WithContext(ctx).Model(u).Update("additional_details_id", p.ID).Error; err != nil {
		tb.Fatalf("attach profile: %v", err)
	}
	u.AdditionalDetailsID = &p.ID
	return p
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB) *types.Category {
	tb.Helper()
	c := &types.Category{ID: uuid.New(), Name: "category-" + uuid.NewString()[:8]}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

// SeedCourse inserts a course without links. createdAt is used when non-zero.
func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, instructorID, categoryID uuid.UUID, createdAt time.Time) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:                uuid.New(),
		CourseName:        "course",
		CourseDescription: "description",
		WhatYouWillLearn:  "things",
		Price:             10,
		InstructorID:      instructorID,
		CategoryID:        categoryID,
		Tag:               datatypes.JSONSlice[string]{"go"},
		Instructions:      datatypes.JSONSlice[string]{"watch"},
		Status:            types.CourseStatusDraft,
		Thumbnail:         types.MediaRef{Key: "thumbnails/c.png", URL: "/uploads/thumbnails/c.png"},
		CreatedAt:         createdAt,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, name string) *types.Section {
	tb.Helper()
	s := &types.Section{ID: uuid.New(), SectionName: name, CourseID: courseID}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedSubSection(tb testing.TB, ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, duration string) *types.SubSection {
	tb.Helper()
	id := uuid.New()
	key := "videos/" + id.String() + ".mp4"
	ss := &types.SubSection{
		ID:           id,
		SectionID:    sectionID,
		Title:        "lecture",
		TimeDuration: duration,
		Video:        types.MediaRef{Key: key, URL: "/uploads/" + key, MimeType: "video/mp4"},
	}
	if err := tx.WithContext(ctx).Create(ss).Error; err != nil {
		tb.Fatalf("seed sub-section: %v", err)
	}
	return ss
}

func SeedLink(tb testing.TB, ctx context.Context, tx *gorm.DB, field types.LinkField, parentID, childID uuid.UUID) {
	tb.Helper()
	row := &types.RefLink{Field: field, ParentID: parentID, ChildID: childID}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed link %s: %v", field, err)
	}
}
