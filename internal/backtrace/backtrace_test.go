package backtrace

import "testing"

func TestMemRegistry_NewFrameAssignsDistinctIDs(t *testing.T) {
	r := NewMemRegistry()
	f1 := r.NewFrame(Empty, IndexKey(0))
	f2 := r.NewFrame(Empty, IndexKey(1))
	if f1 == f2 {
		t.Fatal("two distinct frames got the same id")
	}
}

func TestMemRegistry_PathReconstructsChain(t *testing.T) {
	r := NewMemRegistry()
	root := r.NewFrame(Empty, IndexKey(0))
	child := r.NewFrame(root, NameKey("filter"))

	path := r.Path(child)
	if len(path) != 2 {
		t.Fatalf("Path() = %v, want 2 keys", path)
	}
	if !path[0].IsIndex || path[0].Index != 0 {
		t.Fatalf("path[0] = %+v, want index 0", path[0])
	}
	if path[1].IsIndex || path[1].Name != "filter" {
		t.Fatalf("path[1] = %+v, want name \"filter\"", path[1])
	}
}
