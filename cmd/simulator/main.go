package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tribofy/simulator"
)

func main() {
	numUsers := flag.Int("users", 20, "number of users to register")
	numCommunities := flag.Int("communities", 5, "number of communities to create")
	duration := flag.Duration("duration", 5*time.Minute, "how long to drive activity")
	postFreq := flag.Float64("posts", 2.0, "posts per user per minute")
	commentFreq := flag.Float64("comments", 4.0, "comments per user per minute")
	likeFreq := flag.Float64("likes", 6.0, "like toggles per user per minute")
	baseURL := flag.String("url", "http://localhost:4000", "API base URL")
	flag.Parse()

	config := simulator.SimConfig{
		NumUsers:         *numUsers,
		NumCommunities:   *numCommunities,
		SimulationTime:   *duration,
		PostFrequency:    *postFreq,
		CommentFrequency: *commentFreq,
		LikeFrequency:    *likeFreq,
		APIBaseURL:       *baseURL,
	}

	log.Printf("Starting simulation with configuration:")
	log.Printf("- API URL: %s", config.APIBaseURL)
	log.Printf("- Number of users: %d", config.NumUsers)
	log.Printf("- Number of communities: %d", config.NumCommunities)
	log.Printf("- Simulation time: %v", config.SimulationTime)
	log.Printf("- Post frequency: %.2f posts/user/min", config.PostFrequency)
	log.Printf("- Comment frequency: %.2f comments/user/min", config.CommentFrequency)
	log.Printf("- Like frequency: %.2f likes/user/min", config.LikeFrequency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := simulator.New(config)
	if err := sim.Run(ctx); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}
