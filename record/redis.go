package record

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink pushes records onto a redis list, one JSON document each,
// keyed by run id
type RedisSink struct {
	addr      string
	keyPrefix string
	client    *redis.Client
}

// NewRedisSink writes records to the redis server at addr under
// keyPrefix:<run_id> lists
func NewRedisSink(addr, keyPrefix string) *RedisSink {
	return &RedisSink{
		addr:      addr,
		keyPrefix: keyPrefix,
	}
}

var _ Sink = &RedisSink{}

func (s *RedisSink) Open() error {
	s.client = redis.NewClient(&redis.Options{
		Addr:        s.addr,
		DialTimeout: 500 * time.Millisecond,
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisSink) Write(r Record) error {
	bs, err := json.Marshal(r)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return s.client.RPush(ctx, s.keyPrefix+":"+r.RunID, string(bs)).Err()
}

func (s *RedisSink) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
