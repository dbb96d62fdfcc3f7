package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alanlujan91/DemARK/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.Load()

	fmt.Println("Connecting to:", cfg.DatabaseURL)
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Printf("Error creating pool: %v\n", err)
		return
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Printf("Error pinging postgres: %v\n", err)
		return
	}
	fmt.Println("Postgres connection successful!")

	var result int
	if err := pool.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		fmt.Printf("Error querying: %v\n", err)
		return
	}
	fmt.Printf("Query result: %d\n", result)

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		fmt.Printf("Error parsing redis URL: %v\n", err)
		return
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Printf("Error pinging redis: %v\n", err)
		return
	}
	fmt.Println("Redis connection successful!")

	nc, err := nats.Connect(cfg.NATSURL, nats.Timeout(5*time.Second))
	if err != nil {
		fmt.Printf("Error connecting to NATS: %v\n", err)
		return
	}
	defer nc.Close()
	fmt.Println("NATS connection successful!")
}
