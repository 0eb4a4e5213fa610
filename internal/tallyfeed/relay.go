package tallyfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"arguepulse/models"

	"github.com/redis/go-redis/v9"
)

// StreamKey is the Redis stream every server instance appends tallies to
const StreamKey = "statements:tallies"

const (
	streamMaxLen = 10000
	publishWait  = 2 * time.Second
	readBlock    = 5 * time.Second
)

// Broadcaster delivers tallies to the clients connected to this instance
type Broadcaster interface {
	PublishTally(event models.TallyEvent)
}

// Relay shares tallies between server instances through a Redis stream.
// Each instance appends its votes to the stream and forwards everything it
// reads back to its local clients, so a voter on one instance updates
// viewers on all of them.
type Relay struct {
	rdb   *redis.Client
	local Broadcaster
}

// NewRelay creates a relay. With a nil client it only delivers locally.
func NewRelay(rdb *redis.Client, local Broadcaster) *Relay {
	return &Relay{rdb: rdb, local: local}
}

// PublishTally appends the event to the stream. If Redis is unavailable the
// event is delivered to local clients directly.
func (r *Relay) PublishTally(event models.TallyEvent) {
	if r.rdb == nil {
		r.local.PublishTally(event)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishWait)
	defer cancel()
	if err := r.publish(ctx, event); err != nil {
		log.Printf("Failed to relay tally, delivering locally: %v", err)
		r.local.PublishTally(event)
	}
}

func (r *Relay) publish(ctx context.Context, event models.TallyEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal tally: %w", err)
	}

	err = r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]interface{}{"data": string(data)},
		MaxLen: streamMaxLen,
		Approx: true,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish tally: %w", err)
	}
	return nil
}

// Run forwards tallies appended after it started until ctx is done
func (r *Relay) Run(ctx context.Context) {
	if r.rdb == nil {
		return
	}

	for {
		lastID, err := r.latestID(ctx)
		if err == nil {
			r.consume(ctx, lastID)
			return
		}
		log.Printf("Error locating tally stream position: %v", err)
		if !sleep(ctx, time.Second) {
			return
		}
	}
}

// latestID returns the id of the newest stream entry, or "0-0" for an empty
// stream. Reading from a concrete id instead of "$" means nothing appended
// between two reads is ever skipped.
func (r *Relay) latestID(ctx context.Context) (string, error) {
	messages, err := r.rdb.XRevRangeN(ctx, StreamKey, "+", "-", 1).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read tally stream tail: %w", err)
	}
	if len(messages) == 0 {
		return "0-0", nil
	}
	return messages[0].ID, nil
}

// consume forwards every entry after lastID until ctx is done
func (r *Relay) consume(ctx context.Context, lastID string) {
	for {
		streams, err := r.rdb.XRead(ctx, &redis.XReadArgs{
			Streams: []string{StreamKey, lastID},
			Count:   100,
			Block:   readBlock,
		}).Result()
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			log.Printf("Error reading tally stream: %v", err)
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				lastID = message.ID
				event, err := decodeMessage(message)
				if err != nil {
					log.Printf("Skipping tally %s: %v", message.ID, err)
					continue
				}
				r.local.PublishTally(event)
			}
		}
	}
}

// sleep waits for d and reports false when ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func decodeMessage(message redis.XMessage) (models.TallyEvent, error) {
	data, ok := message.Values["data"].(string)
	if !ok {
		return models.TallyEvent{}, errors.New("invalid message format: missing data field")
	}

	var event models.TallyEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return models.TallyEvent{}, fmt.Errorf("failed to unmarshal tally: %w", err)
	}
	if event.StatementID == "" {
		return models.TallyEvent{}, errors.New("tally has no statement id")
	}
	return event, nil
}
