package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/realitycheck/internal/db"
)

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &db.Error{Op: op, Err: err}
}

// Get returns the value at key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(s.key(key)).Build()).AsBytes()
	if rueidis.IsRedisNil(err) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, wrap(db.OpGet, err)
	}
	return data, nil
}

// Set stores value at key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Set().Key(s.key(key)).Value(rueidis.BinaryString(value)).Build()
	return wrap(db.OpSet, s.do(ctx, cmd).Error())
}

// SetWithTTL stores value at key for ttl. A non-positive ttl means no expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Set(ctx, key, value)
	}
	cmd := s.b().Set().Key(s.key(key)).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	return wrap(db.OpSet, s.do(ctx, cmd).Error())
}

// Del removes key. A missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	return wrap(db.OpDel, s.do(ctx, s.b().Del().Key(s.key(key)).Build()).Error())
}

// IncrBy adds val to the integer at key, creating it at zero.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	cmd := s.b().Incrby().Key(s.key(key)).Increment(val).Build()
	return wrap(db.OpIncrBy, s.do(ctx, cmd).Error())
}

// Expire sets a ttl in whole seconds. With nx it only applies to keys without one.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	secs := int64(ttl / time.Second)
	var cmd rueidis.Completed
	if nx {
		cmd = s.b().Expire().Key(s.key(key)).Seconds(secs).Nx().Build()
	} else {
		cmd = s.b().Expire().Key(s.key(key)).Seconds(secs).Build()
	}
	return wrap(db.OpExpire, s.do(ctx, cmd).Error())
}
