package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	// Ventana larga para que el test nunca cruce el borde.
	l := NewMemoryLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "ip1")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d should be allowed", i)
		}
		if res.CurrentHits != int64(i) {
			t.Fatalf("hits = %d, want %d", res.CurrentHits, i)
		}
		if res.Remaining != int64(3-i) {
			t.Fatalf("remaining = %d, want %d", res.Remaining, 3-i)
		}
	}

	res, err := l.Allow(ctx, "ip1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("fourth hit should be denied")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("RetryAfter = %v, want > 0", res.RetryAfter)
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", res.Remaining)
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Hour)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "ip1"); !res.Allowed {
		t.Fatal("first hit for ip1 should pass")
	}
	if res, _ := l.Allow(ctx, "ip1"); res.Allowed {
		t.Fatal("second hit for ip1 should be denied")
	}
	if res, _ := l.Allow(ctx, "ip2"); !res.Allowed {
		t.Fatal("ip2 has its own window")
	}
}
