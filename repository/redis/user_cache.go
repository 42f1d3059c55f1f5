package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type userCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// cachedUser omits the password hash; the cache only answers identity lookups.
type cachedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserCache creates a Redis-backed identity cache keyed by email.
func NewUserCache(client *redislib.Client, ttl time.Duration) repository.UserCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &userCache{
		client: client,
		prefix: "identity:",
		ttl:    ttl,
	}
}

func (c *userCache) Get(ctx context.Context, email string) (*domain.User, error) {
	result, err := c.client.Get(ctx, c.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	var cached cachedUser
	if err := json.Unmarshal(result, &cached); err != nil {
		return nil, err
	}
	return &domain.User{ID: cached.ID, Email: cached.Email, CreatedAt: cached.CreatedAt}, nil
}

func (c *userCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(cachedUser{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(user.Email), payload, c.ttl).Err()
}

func (c *userCache) key(email string) string {
	return fmt.Sprintf("%s%s", c.prefix, email)
}
