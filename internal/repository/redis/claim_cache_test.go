package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/repository"
)

func newTestRedis(t *testing.T) *red.Client {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client
}

func TestClaimCache_LoadMiss(t *testing.T) {
	cache := NewClaimCache(newTestRedis(t), "")

	if _, err := cache.Load(context.Background(), 1, "PRIMARY/alice"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimCache_UpdateClaimCreatesBag(t *testing.T) {
	cache := NewClaimCache(newTestRedis(t), "")
	ctx := context.Background()

	if err := cache.UpdateClaim(ctx, 1, "PRIMARY/erin", domain.ClaimLastLoginTime, "1700000000"); err != nil {
		t.Fatalf("UpdateClaim returned error: %v", err)
	}

	bag, err := cache.Load(ctx, 1, "PRIMARY/erin")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if bag.Username != "PRIMARY/erin" {
		t.Fatalf("unexpected username: %s", bag.Username)
	}
	if got := bag.Claim(domain.ClaimLastLoginTime); got != "1700000000" {
		t.Fatalf("expected claim value 1700000000, got %s", got)
	}
}

func TestClaimCache_UpdateClaimOverwrites(t *testing.T) {
	cache := NewClaimCache(newTestRedis(t), "")
	ctx := context.Background()

	if err := cache.UpdateClaim(ctx, 1, "PRIMARY/erin", domain.ClaimLastLoginTime, "1700000000"); err != nil {
		t.Fatalf("UpdateClaim returned error: %v", err)
	}
	if err := cache.UpdateClaim(ctx, 1, "PRIMARY/erin", domain.ClaimLastLoginTime, "1700000500"); err != nil {
		t.Fatalf("UpdateClaim returned error: %v", err)
	}

	bag, err := cache.Load(ctx, 1, "PRIMARY/erin")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := bag.Claim(domain.ClaimLastLoginTime); got != "1700000500" {
		t.Fatalf("expected overwritten value 1700000500, got %s", got)
	}
}

func TestClaimCache_TenantsDoNotShareBags(t *testing.T) {
	cache := NewClaimCache(newTestRedis(t), "")
	ctx := context.Background()

	if err := cache.UpdateClaim(ctx, 1, "PRIMARY/erin", domain.ClaimLastLoginTime, "1700000000"); err != nil {
		t.Fatalf("UpdateClaim returned error: %v", err)
	}

	if _, err := cache.Load(ctx, 2, "PRIMARY/erin"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other tenant, got %v", err)
	}
}

func TestClaimCache_ConcurrentDistinctClaimsConverge(t *testing.T) {
	cache := NewClaimCache(newTestRedis(t), "")
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = cache.UpdateClaim(ctx, 1, "PRIMARY/erin", domain.ClaimLastLoginTime, "1700000000")
	}()
	go func() {
		defer wg.Done()
		_ = cache.UpdateClaim(ctx, 1, "PRIMARY/erin", domain.ClaimLastPasswordUpdateTime, "1700000100")
	}()
	wg.Wait()

	bag, err := cache.Load(ctx, 1, "PRIMARY/erin")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if bag.Claim(domain.ClaimLastLoginTime) != "1700000000" {
		t.Fatalf("lost login claim: %v", bag.Claims)
	}
	if bag.Claim(domain.ClaimLastPasswordUpdateTime) != "1700000100" {
		t.Fatalf("lost password claim: %v", bag.Claims)
	}
}

func TestClaimCache_ConcurrentSameClaimLastWriteWins(t *testing.T) {
	cache := NewClaimCache(newTestRedis(t), "")
	ctx := context.Background()

	written := make(map[string]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value := fmt.Sprintf("17000000%02d", i)
			mu.Lock()
			written[value] = struct{}{}
			mu.Unlock()
			_ = cache.UpdateClaim(ctx, 1, "PRIMARY/erin", domain.ClaimLastLoginTime, value)
		}(i)
	}
	wg.Wait()

	bag, err := cache.Load(ctx, 1, "PRIMARY/erin")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, ok := written[bag.Claim(domain.ClaimLastLoginTime)]; !ok {
		t.Fatalf("converged value %q was never written", bag.Claim(domain.ClaimLastLoginTime))
	}
}
