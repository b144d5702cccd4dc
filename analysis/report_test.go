package analysis

import (
	"errors"
	"testing"

	"topicquiz/api/models"
)

func TestBuild(t *testing.T) {
	report := Build("v1", []models.Session{exampleSession()}, testUniverse())

	if report.Version != "v1" {
		t.Errorf("unexpected version %q", report.Version)
	}
	if len(report.Rows) != 1 || report.Rows[0].SessionNumber != 1 {
		t.Fatalf("unexpected rows %+v", report.Rows)
	}
	if len(report.Statistics) != 3 || len(report.Ranking) != 3 {
		t.Errorf("expected 3 statistics and 3 ranked topics, got %d/%d", len(report.Statistics), len(report.Ranking))
	}
}

func TestCache(t *testing.T) {
	cache, err := NewCache(2)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	builds := 0
	build := func(version string) func() (*Report, error) {
		return func() (*Report, error) {
			builds++
			return Build(version, nil, testUniverse()), nil
		}
	}

	first, hit, err := cache.Get("1:100", build("1:100"))
	if err != nil || hit {
		t.Fatalf("expected a miss, got hit=%v err=%v", hit, err)
	}
	again, hit, err := cache.Get("1:100", build("1:100"))
	if err != nil || !hit || again != first {
		t.Fatalf("expected cached report, got hit=%v err=%v", hit, err)
	}

	// a new session changes the version
	fresh, hit, err := cache.Get("2:200", build("2:200"))
	if err != nil || hit || fresh.Version != "2:200" {
		t.Fatalf("expected rebuild for new version, got hit=%v err=%v", hit, err)
	}
	if builds != 2 {
		t.Errorf("expected 2 builds, got %d", builds)
	}

	cache.Purge()
	if _, hit, _ := cache.Get("2:200", build("2:200")); hit {
		t.Error("expected miss after purge")
	}

	boom := errors.New("fetch failed")
	if _, _, err := cache.Get("3:300", func() (*Report, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
	if _, hit, _ := cache.Get("3:300", build("3:300")); hit {
		t.Error("failed builds must not be cached")
	}
}
