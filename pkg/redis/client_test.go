package redis

import (
	"testing"

	"github.com/kittipat-ch/pricebench-backend/pkg/config"
)

func TestIdempotencyKeyNamespacing(t *testing.T) {
	c := &Client{}
	key := c.IdempotencyKey("POST|/api/v1/master-data/fab_cost/drafts", "abc")
	want := "pb:idempotency:POST|/api/v1/master-data/fab_cost/drafts:abc"
	if key != want {
		t.Fatalf("expected %q, got %q", want, key)
	}
}

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	c := &Client{}
	if got := c.IdempotencyKey("", "abc"); got != "pb:idempotency:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address set")
	}

	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("expected pool size 5, got %d", opts.PoolSize)
	}
}
