package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Upstream: 3 * time.Second})

	if got := timeouts.Upstream(); got != 3*time.Second {
		t.Errorf("Upstream: got %v", got)
	}
	if got := timeouts.Provider(); got != timeouts.DefaultProvider {
		t.Errorf("Provider should keep its default, got %v", got)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	t.Setenv("EVENTHUB_TIMEOUT_PROVIDER", "750ms")
	t.Setenv("EVENTHUB_TIMEOUT_SHORT", "nonsense")

	if n := timeouts.ConfigureFromEnv(); n != 1 {
		t.Fatalf("configured: got %d, want 1", n)
	}
	cur := timeouts.Current()
	if cur.Provider != 750*time.Millisecond {
		t.Errorf("Provider: got %v", cur.Provider)
	}
	if cur.Short != timeouts.DefaultShort {
		t.Errorf("Short: got %v", cur.Short)
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Fatalf("got %v", ctx.Err())
	}
}
