package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	red "github.com/redis/go-redis/v9"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/core/port"
	"github.com/ZiyamSanthosh/identity-governance/internal/repository"
)

const defaultClaimCachePrefix = "idgov:user_claims"

// ClaimCache stores per-user claim bags as Redis hashes for fast reads.
// No TTL is applied; bag lifecycle follows the user account itself.
type ClaimCache struct {
	client *red.Client
	prefix string
}

// NewClaimCache constructs the claim bag cache helper.
func NewClaimCache(client *red.Client, keyPrefix string) *ClaimCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultClaimCachePrefix
	}
	return &ClaimCache{client: client, prefix: prefix}
}

// Load fetches the cached claim bag for username, or repository.ErrNotFound
// when no bag exists.
func (c *ClaimCache) Load(ctx context.Context, tenantID int, username string) (*domain.UserClaimBag, error) {
	key, err := c.key(tenantID, username)
	if err != nil {
		return nil, err
	}

	values, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis load claim bag: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	return &domain.UserClaimBag{Username: username, Claims: values}, nil
}

// Store writes the whole bag back. Hash fields merge per claim URI, so
// concurrent writers of distinct claims never erase each other.
func (c *ClaimCache) Store(ctx context.Context, tenantID int, bag *domain.UserClaimBag) error {
	if bag == nil {
		return fmt.Errorf("claim bag is required")
	}
	key, err := c.key(tenantID, bag.Username)
	if err != nil {
		return err
	}
	if len(bag.Claims) == 0 {
		return nil
	}

	fields := make(map[string]any, len(bag.Claims))
	for claimURI, value := range bag.Claims {
		fields[claimURI] = value
	}

	if err := c.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("redis store claim bag: %w", err)
	}

	return nil
}

// UpdateClaim loads the existing bag, creating a fresh one when absent, sets
// the claim, and stores the bag back.
func (c *ClaimCache) UpdateClaim(ctx context.Context, tenantID int, username, claimURI, value string) error {
	bag, err := c.Load(ctx, tenantID, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		bag = domain.NewUserClaimBag(username)
	}

	bag.SetClaim(claimURI, value)

	return c.Store(ctx, tenantID, bag)
}

func (c *ClaimCache) key(tenantID int, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	return fmt.Sprintf("%s:%d:%s", c.prefix, tenantID, username), nil
}

var _ port.ClaimCache = (*ClaimCache)(nil)
