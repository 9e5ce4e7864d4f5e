package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldInstructorID    = "instructor_id"
	fieldInstructorName  = "instructor_name"
	fieldInstructorEmail = "instructor_email"
	fieldFlashSuccess    = "flash_success"
	fieldFlashError      = "flash_error"
)

// RedisStore keeps each session as a hash under "<prefix><id>" with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "attendance:session:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Get loads the session hash.
func (s *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	values, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}
	data := &Data{
		Identity: Identity{
			InstructorName:  values[fieldInstructorName],
			InstructorEmail: values[fieldInstructorEmail],
		},
		Flash: Flash{
			Success: values[fieldFlashSuccess],
			Error:   values[fieldFlashError],
		},
	}
	if raw := values[fieldInstructorID]; raw != "" {
		instructorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode session instructor id: %w", err)
		}
		data.Identity.InstructorID = instructorID
	}
	return data, nil
}

// SetIdentity writes the identity fields and refreshes the TTL in one transaction.
func (s *RedisStore) SetIdentity(ctx context.Context, id string, identity Identity, ttl time.Duration) error {
	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			fieldInstructorID, strconv.FormatInt(identity.InstructorID, 10),
			fieldInstructorName, identity.InstructorName,
			fieldInstructorEmail, identity.InstructorEmail,
		)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session identity: %w", err)
	}
	return nil
}

// SetFlash writes one flash slot and refreshes the TTL.
func (s *RedisStore) SetFlash(ctx context.Context, id string, kind FlashKind, message string, ttl time.Duration) error {
	field := fieldFlashError
	if kind == FlashSuccess {
		field = fieldFlashSuccess
	}
	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, field, message)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session flash: %w", err)
	}
	return nil
}

// TakeFlash reads and deletes both flash fields inside MULTI/EXEC.
func (s *RedisStore) TakeFlash(ctx context.Context, id string) (Flash, error) {
	key := s.key(id)
	var read *redis.SliceCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		read = p.HMGet(ctx, key, fieldFlashSuccess, fieldFlashError)
		p.HDel(ctx, key, fieldFlashSuccess, fieldFlashError)
		return nil
	})
	if err != nil {
		return Flash{}, fmt.Errorf("take session flash: %w", err)
	}
	values := read.Val()
	flash := Flash{}
	if len(values) == 2 {
		flash.Success, _ = values[0].(string)
		flash.Error, _ = values[1].(string)
	}
	return flash, nil
}

// Destroy deletes the session hash.
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
