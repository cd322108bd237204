//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	searchStream = "stream:ecopoint:search"
	foundStream  = "stream:ecopoint:found"
)

type searchEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	To        string    `json:"to,omitempty"`
	Lat       string    `json:"lat"`
	Lng       string    `json:"lng"`
	Filtro    string    `json:"filtro,omitempty"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	lat := flag.String("lat", "-23.5505", "latitude as sent by the bot")
	lng := flag.String("lng", "-46.6333", "longitude as sent by the bot")
	filtro := flag.String("filtro", "", "comma separated categories")
	flag.Parse()

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := searchEvent{
		RequestID: uuid.New(),
		To:        "5511999999999",
		Lat:       *lat,
		Lng:       *lng,
		Filtro:    *filtro,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// remember where the found stream ends so older replies are skipped
	lastID := "$"
	if last, err := client.XRevRangeN(ctx, foundStream, "+", "-", 1).Result(); err == nil && len(last) > 0 {
		lastID = last[0].ID
	}

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: searchStream,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Published %s to %s (request %s)\n", id, searchStream, event.RequestID)
	fmt.Printf("Waiting for reply in %s...\n", foundStream)

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{foundStream, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			log.Fatalf("Failed to read replies: %v", err)
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				raw, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var reply map[string]interface{}
				if err := json.Unmarshal([]byte(raw), &reply); err != nil {
					continue
				}
				if reply["request_id"] != event.RequestID.String() {
					continue
				}

				pretty, _ := json.MarshalIndent(reply, "", "  ")
				fmt.Printf("%s\n", pretty)
				return
			}
		}
	}

	fmt.Println("Timeout waiting for reply")
}
