package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codectx/fastcontext/internal/config"
	"github.com/codectx/fastcontext/internal/engine"
)

func benchEngine(b *testing.B) *engine.FastContext {
	b.Helper()
	wd, err := os.Getwd()
	if err != nil {
		b.Fatal(err)
	}
	fixtures := filepath.Join(filepath.Dir(wd), "testdata", "fixtures")

	fc, err := engine.New(fixtures, engine.Options{Config: config.DefaultConfig()})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = fc.Close() })
	return fc
}

// BenchmarkSearchUncached measures a full backend scan per query
func BenchmarkSearchUncached(b *testing.B) {
	fc := benchEngine(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := fc.Search(context.Background(), "Authenticate", engine.SearchOptions{NoCache: true})
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSearchCached measures cache hit latency
func BenchmarkSearchCached(b *testing.B) {
	fc := benchEngine(b)
	if _, err := fc.Search(context.Background(), "Authenticate", engine.SearchOptions{}); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		result, err := fc.Search(context.Background(), "Authenticate", engine.SearchOptions{})
		if err != nil {
			b.Fatal(err)
		}
		if !result.FromCache {
			b.Fatal("expected cache hit")
		}
	}
}

// BenchmarkMultiTermFanOut measures the parallel per-term path
func BenchmarkMultiTermFanOut(b *testing.B) {
	fc := benchEngine(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := fc.Search(context.Background(), "Session Token Revoke", engine.SearchOptions{NoCache: true})
		if err != nil {
			b.Fatal(err)
		}
	}
}
