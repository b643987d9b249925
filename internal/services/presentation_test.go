package services

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
	types "github.com/yungbote/studynotion-backend/internal/domain"
)

func TestExternalizeURL(t *testing.T) {
	cases := []struct {
		raw, base, want string
	}{
		{"/uploads/thumbnails/a.png", "http://localhost:4000", "http://localhost:4000/uploads/thumbnails/a.png"},
		{"uploads/videos/b.mp4", "https://api.example.com/", "https://api.example.com/uploads/videos/b.mp4"},
		{"https://cdn.example.com/a.png", "http://localhost:4000", "https://cdn.example.com/a.png"},
		{"HTTP://cdn.example.com/a.png", "http://localhost:4000", "HTTP://cdn.example.com/a.png"},
		{"//cdn.example.com/a.png", "http://localhost:4000", "//cdn.example.com/a.png"},
		{"", "http://localhost:4000", ""},
		{"/uploads/a.png", "", "/uploads/a.png"},
	}
	for _, tc := range cases {
		if got := ExternalizeURL(tc.raw, tc.base); got != tc.want {
			t.Fatalf("ExternalizeURL(%q, %q): want=%s got=%s", tc.raw, tc.base, tc.want, got)
		}
	}
}

func TestExternalizeDoesNotMutateSource(t *testing.T) {
	tree := &aggregates.CourseTree{
		Course: &types.Course{
			Tag:       datatypes.JSONSlice[string]{"a"},
			Thumbnail: types.MediaRef{URL: "/uploads/thumbnails/t.png"},
		},
		Instructor: &aggregates.InstructorNode{User: &types.User{Image: "https://avatars.example.com/x"}},
		CourseContent: []*aggregates.SectionNode{{
			Section:    &types.Section{SectionName: "s"},
			SubSection: []*types.SubSection{{Video: types.MediaRef{URL: "/uploads/videos/v.mp4"}}},
		}},
		StudentsEnrolled: []*types.User{{Image: "/uploads/images/s.png"}},
	}

	out := Externalize(tree, "http://host")

	if out.Thumbnail.URL != "http://host/uploads/thumbnails/t.png" {
		t.Fatalf("thumbnail: got=%s", out.Thumbnail.URL)
	}
	if out.Instructor.Image != "https://avatars.example.com/x" {
		t.Fatalf("absolute instructor image changed: got=%s", out.Instructor.Image)
	}
	if got := out.CourseContent[0].SubSection[0].Video.URL; got != "http://host/uploads/videos/v.mp4" {
		t.Fatalf("video: got=%s", got)
	}
	if got := out.StudentsEnrolled[0].Image; got != "http://host/uploads/images/s.png" {
		t.Fatalf("student image: got=%s", got)
	}

	if tree.Thumbnail.URL != "/uploads/thumbnails/t.png" {
		t.Fatalf("source thumbnail mutated: %s", tree.Thumbnail.URL)
	}
	if tree.CourseContent[0].SubSection[0].Video.URL != "/uploads/videos/v.mp4" {
		t.Fatalf("source video mutated")
	}
	if tree.StudentsEnrolled[0].Image != "/uploads/images/s.png" {
		t.Fatalf("source student image mutated")
	}
	out.Tag[0] = "changed"
	if tree.Tag[0] != "a" {
		t.Fatalf("tag slice shared with source")
	}
}

func TestExternalizeCourses(t *testing.T) {
	in := []*CourseSummary{{Thumbnail: "/uploads/thumbnails/a.png", Instructor: &InstructorSummary{Image: "/uploads/images/i.png"}}}
	out := ExternalizeCourses(in, "http://h")
	if out[0].Thumbnail != "http://h/uploads/thumbnails/a.png" || out[0].Instructor.Image != "http://h/uploads/images/i.png" {
		t.Fatalf("ExternalizeCourses: got=%+v", out[0])
	}
	if in[0].Thumbnail != "/uploads/thumbnails/a.png" || in[0].Instructor.Image != "/uploads/images/i.png" {
		t.Fatalf("ExternalizeCourses mutated input")
	}
}

func TestExternalizeSection(t *testing.T) {
	node := &aggregates.SectionNode{
		Section: &types.Section{SectionName: "intro"},
		SubSection: []*types.SubSection{
			{Video: types.MediaRef{URL: "/uploads/videos/a.mp4"}},
			{Video: types.MediaRef{URL: "https://storage.googleapis.com/b/videos/b.mp4"}},
		},
	}
	out := ExternalizeSection(node, "http://api.local")
	if got := out.SubSection[0].Video.URL; got != "http://api.local/uploads/videos/a.mp4" {
		t.Fatalf("relative video: got=%s", got)
	}
	if got := out.SubSection[1].Video.URL; got != "https://storage.googleapis.com/b/videos/b.mp4" {
		t.Fatalf("absolute video: got=%s", got)
	}
	if node.SubSection[0].Video.URL != "/uploads/videos/a.mp4" {
		t.Fatalf("source mutated: got=%s", node.SubSection[0].Video.URL)
	}
	if ExternalizeSection(nil, "x") != nil {
		t.Fatalf("nil section: expected nil")
	}
}
