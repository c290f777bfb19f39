package cli

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/matzehuels/mfdcache/pkg/cache"
	"github.com/matzehuels/mfdcache/pkg/provider"
)

func testArtifacts() provider.Artifacts {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	base := &cache.Artifact{Key: "M-C-1", Path: "/c/M-C-1.png", Width: 20, Height: 10, Image: img, Cached: true, Persisted: true}
	sub := &cache.Artifact{Key: "M-S-2", Path: "/c/M-S-2.png", Width: 20, Height: 10, Image: img, Persisted: true}
	mem := &cache.Artifact{Key: "M-T-3", Width: 20, Height: 10, Image: img}
	return provider.Artifacts{
		"M-C":      base,
		"M-C-S":    sub,
		"M-C-Desc": sub,
		"M-D":      mem,
	}
}

func TestCountArtifacts(t *testing.T) {
	s := countArtifacts(testArtifacts())
	if s.cached != 1 || s.fresh != 1 || s.memory != 1 {
		t.Errorf("countArtifacts = %+v", s)
	}
	if s.total() != 3 {
		t.Errorf("total() = %d, want 3", s.total())
	}
	str := s.String()
	for _, want := range []string{"1 fresh", "1 cached", "1 memory"} {
		if !strings.Contains(str, want) {
			t.Errorf("String() = %q, missing %q", str, want)
		}
	}
}

func TestArtifactTable(t *testing.T) {
	out := artifactTable(testArtifacts())
	for _, want := range []string{"M-C-Desc", "20x10", "/c/M-S-2.png", iconMemory} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "M-C ") > strings.Index(out, "M-D") {
		t.Error("rows should be sorted by key")
	}
}

func TestRebuildProgress(t *testing.T) {
	s := newSpinner("")
	p := newRebuildProgress(s)
	ctx := context.Background()

	p.OnModuleStart(ctx, "A")
	p.OnModuleStart(ctx, "B")
	if msg := s.Message(); !strings.Contains(msg, "2 running") {
		t.Errorf("message = %q", msg)
	}
	p.OnModuleComplete(ctx, "A", 3, 0, nil)
	p.OnModuleComplete(ctx, "B", 0, 0, errors.New("boom"))
	if p.completed() != 1 {
		t.Errorf("completed() = %d, want 1", p.completed())
	}
	if msg := s.Message(); !strings.Contains(msg, "1 done, 0 running") {
		t.Errorf("message = %q", msg)
	}
}

func TestPickModule(t *testing.T) {
	modules := tuiModules(t)
	if m, err := pickModule(modules, ""); err != nil || m.Name != "A" {
		t.Errorf("default module = %v, %v", m, err)
	}
	if m, err := pickModule(modules, "b"); err != nil || m.Name != "B" {
		t.Errorf("pickModule(b) = %v, %v", m, err)
	}
	if _, err := pickModule(modules, "zzz"); err == nil {
		t.Error("unknown module should fail")
	}
	if _, err := pickModule(nil, ""); err == nil {
		t.Error("no modules should fail")
	}
}
