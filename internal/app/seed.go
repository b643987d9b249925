package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/pkg/pointers"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
	"github.com/yungbote/studynotion-backend/internal/services"
)

type Fixtures struct {
	Categories []CategoryFixture `yaml:"categories"`
	Users      []UserFixture     `yaml:"users"`
	Courses    []CourseFixture   `yaml:"courses"`

	// dir resolves relative media paths.
	dir string
}

type CategoryFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type UserFixture struct {
	Email       string `yaml:"email"`
	FirstName   string `yaml:"first_name"`
	LastName    string `yaml:"last_name"`
	AccountType string `yaml:"account_type"`
}

type CourseFixture struct {
	Name             string           `yaml:"name"`
	Description      string           `yaml:"description"`
	WhatYouWillLearn string           `yaml:"what_you_will_learn"`
	Price            float64          `yaml:"price"`
	Category         string           `yaml:"category"`
	Instructor       string           `yaml:"instructor"`
	Status           string           `yaml:"status"`
	Tags             []string         `yaml:"tags"`
	Instructions     []string         `yaml:"instructions"`
	Thumbnail        string           `yaml:"thumbnail"`
	Students         []string         `yaml:"students"`
	Sections         []SectionFixture `yaml:"sections"`
}

type SectionFixture struct {
	Name        string              `yaml:"name"`
	SubSections []SubSectionFixture `yaml:"sub_sections"`
}

type SubSectionFixture struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Duration    string `yaml:"duration"`
	Video       string `yaml:"video"`
}

type SeedResult struct {
	Categories int
	Users      int
	Courses    int
	Skipped    int
}

func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixtures %s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return &f, nil
}

// Seed creates the fixtures through the regular services, so seeded courses
// carry the same links and media as ones created over HTTP. Existing
// categories, users and same-named courses of an instructor are left alone.
func (a *App) Seed(ctx context.Context, f *Fixtures) (*SeedResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	res := &SeedResult{}

	categories := map[string]*types.Category{}
	for _, cf := range f.Categories {
		cat, err := a.Repos.Category.GetByName(dbc, cf.Name)
		if err == nil && cat == nil {
			var created []*types.Category
			created, err = a.Repos.Category.Create(dbc, []*types.Category{{Name: cf.Name, Description: cf.Description}})
			if err == nil {
				cat = created[0]
				res.Categories++
			}
		}
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cf.Name, err)
		}
		categories[cf.Name] = cat
	}

	users := map[string]*types.User{}
	for _, uf := range f.Users {
		email := strings.ToLower(strings.TrimSpace(uf.Email))
		u, err := a.Repos.User.GetByEmail(dbc, email)
		if err == nil && u == nil {
			var created []*types.User
			created, err = a.Repos.User.Create(dbc, []*types.User{{
				Email:       email,
				FirstName:   uf.FirstName,
				LastName:    uf.LastName,
				AccountType: uf.AccountType,
			}})
			if err == nil {
				u = created[0]
				res.Users++
			}
		}
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", uf.Email, err)
		}
		users[email] = u
	}

	for _, cf := range f.Courses {
		created, err := a.seedCourse(ctx, f, cf, categories, users)
		if err != nil {
			return nil, fmt.Errorf("course %q: %w", cf.Name, err)
		}
		if created {
			res.Courses++
		} else {
			res.Skipped++
		}
	}
	a.Log.Info("Seed finished",
		"categories", res.Categories,
		"users", res.Users,
		"courses", res.Courses,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (a *App) seedCourse(ctx context.Context, f *Fixtures, cf CourseFixture, categories map[string]*types.Category, users map[string]*types.User) (bool, error) {
	inst, ok := users[strings.ToLower(cf.Instructor)]
	if !ok {
		return false, fmt.Errorf("unknown instructor %q", cf.Instructor)
	}
	cat, ok := categories[cf.Category]
	if !ok {
		return false, fmt.Errorf("unknown category %q", cf.Category)
	}
	actor := ctxutil.Actor{UserID: inst.ID, Role: ctxutil.Role(inst.AccountType)}

	existing, err := a.Services.Course.ListInstructorCourses(ctx, actor)
	if err != nil {
		return false, err
	}
	for _, c := range existing {
		if c.CourseName == cf.Name {
			return false, nil
		}
	}

	thumb, err := f.blob(cf.Thumbnail, "thumbnail.png", "image/png")
	if err != nil {
		return false, err
	}
	course, err := a.Services.Course.CreateCourse(ctx, actor, services.CreateCourseInput{
		CourseName:        cf.Name,
		CourseDescription: cf.Description,
		WhatYouWillLearn:  cf.WhatYouWillLearn,
		Price:             pointers.Float64(cf.Price),
		CategoryID:        cat.ID,
		Tag:               jsonList(cf.Tags),
		Instructions:      jsonList(cf.Instructions),
		Status:            cf.Status,
		Thumbnail:         thumb,
	})
	if err != nil {
		return false, err
	}

	for _, sf := range cf.Sections {
		tree, err := a.Services.Section.CreateSection(ctx, actor, course.ID, sf.Name)
		if err != nil {
			return true, fmt.Errorf("section %q: %w", sf.Name, err)
		}
		section := tree.CourseContent[len(tree.CourseContent)-1]
		for _, ssf := range sf.SubSections {
			video, err := f.blob(ssf.Video, "lecture.mp4", "video/mp4")
			if err != nil {
				return true, err
			}
			if _, err := a.Services.SubSection.AttachSubSection(ctx, actor, services.SubSectionInput{
				SectionID:    section.ID,
				Title:        ssf.Title,
				Description:  ssf.Description,
				TimeDuration: ssf.Duration,
				Video:        video,
			}); err != nil {
				return true, fmt.Errorf("sub-section %q: %w", ssf.Title, err)
			}
		}
	}

	for _, email := range cf.Students {
		student, ok := users[strings.ToLower(email)]
		if !ok {
			return true, fmt.Errorf("unknown student %q", email)
		}
		if err := a.Services.Course.EnrollStudent(ctx, course.ID, student.ID); err != nil {
			return true, fmt.Errorf("enroll %q: %w", email, err)
		}
	}
	return true, nil
}

// blob reads path relative to the fixture file, or yields a small
// placeholder when no path is given.
func (f *Fixtures) blob(path, placeholder, contentType string) (*media.Blob, error) {
	if path == "" {
		body := []byte("seed placeholder")
		return &media.Blob{
			Filename:    placeholder,
			ContentType: contentType,
			Size:        int64(len(body)),
			Reader:      bytes.NewReader(body),
		}, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.dir, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read media fixture: %w", err)
	}
	return &media.Blob{
		Filename: filepath.Base(path),
		Size:     int64(len(raw)),
		Reader:   bytes.NewReader(raw),
	}, nil
}

func jsonList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, it := range items {
		quoted = append(quoted, strconv.Quote(it))
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
