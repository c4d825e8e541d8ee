package index

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/kailas-cloud/pitchsearch/internal/db"
	"github.com/kailas-cloud/pitchsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterStoreMetrics()
	os.Exit(m.Run())
}

// mockStore implements the consumer interface for tests.
type mockStore struct {
	existsFn func(ctx context.Context, name string) (bool, error)
	createFn func(ctx context.Context, def *db.IndexDefinition) error
	created  *db.IndexDefinition
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.created = def
	if m.createFn != nil {
		return m.createFn(ctx, def)
	}
	return nil
}

func TestDefinition(t *testing.T) {
	r := New(&mockStore{}, "redis", "music_reviews", 384, db.DistanceCosine).
		WithHNSW(HNSWConfig{M: 32})

	def, err := r.Definition()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "music_reviews" {
		t.Errorf("unexpected name %q", def.Name)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "pitchsearch:music_reviews:" {
		t.Errorf("unexpected prefixes %v", def.Prefixes)
	}
	if len(def.Fields) != 6 {
		t.Fatalf("expected 6 fields, got %d", len(def.Fields))
	}

	vf := def.VectorField()
	if vf == nil {
		t.Fatal("expected a vector field")
	}
	if vf.Name != VectorField || vf.VectorDim != 384 || vf.VectorDistance != db.DistanceCosine {
		t.Errorf("unexpected vector field %+v", vf)
	}
	if vf.VectorM != 32 || vf.VectorEFConstruct != 200 {
		t.Errorf("expected M=32 EF=200, got M=%d EF=%d", vf.VectorM, vf.VectorEFConstruct)
	}

	want := "FT.CREATE music_reviews ON HASH PREFIX pitchsearch:music_reviews: SCHEMA " +
		"title TEXT artists TEXT body TEXT score NUMERIC review_url TAG vector VECTOR HNSW"
	if got := def.String(); got != want {
		t.Errorf("unexpected schema:\n got %s\nwant %s", got, want)
	}
}

func TestDefinition_InvalidDim(t *testing.T) {
	r := New(&mockStore{}, "redis", "music_reviews", 0, db.DistanceCosine)
	if _, err := r.Definition(); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestEnsure_Creates(t *testing.T) {
	ms := &mockStore{}
	r := New(ms, "qdrant", "music_reviews", 384, db.DistanceCosine)

	created, err := r.Ensure(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}
	if ms.created == nil || ms.created.Name != "music_reviews" {
		t.Errorf("expected CreateIndex with the reviews definition, got %+v", ms.created)
	}
}

func TestEnsure_AlreadyExists(t *testing.T) {
	ms := &mockStore{existsFn: func(_ context.Context, _ string) (bool, error) { return true, nil }}
	r := New(ms, "redis", "music_reviews", 384, db.DistanceCosine)

	created, err := r.Ensure(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false")
	}
	if ms.created != nil {
		t.Error("CreateIndex must not be called for an existing index")
	}
}

func TestEnsure_CreateRace(t *testing.T) {
	ms := &mockStore{createFn: func(_ context.Context, _ *db.IndexDefinition) error {
		return db.ErrIndexExists
	}}
	r := New(ms, "redis", "music_reviews", 384, db.DistanceCosine)

	created, err := r.Ensure(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false when another process won")
	}
}

func TestEnsure_Errors(t *testing.T) {
	boom := errors.New("boom")

	ms := &mockStore{existsFn: func(_ context.Context, _ string) (bool, error) { return false, boom }}
	if _, err := New(ms, "redis", "c", 4, db.DistanceCosine).Ensure(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected exists error, got %v", err)
	}

	ms = &mockStore{createFn: func(_ context.Context, _ *db.IndexDefinition) error { return boom }}
	if _, err := New(ms, "redis", "c", 4, db.DistanceCosine).Ensure(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected create error, got %v", err)
	}
}
