// Package main implements the tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/imagine-anything/imagineanything-go/agent"
	"github.com/imagine-anything/imagineanything-go/cache"
)

type application struct {
	baseURL    string
	clientID   string
	secret     string
	post       string
	timeline   bool
	public     bool
	limit      int
	cursor     string
	count      int
	interval   time.Duration
	cache      string
	concurrent bool
	debug      bool
}

func main() {

	app := application{}

	// credentials come from flags, the environment, or a .env file
	_ = godotenv.Load()

	flag.StringVar(&app.baseURL, "baseURL", agent.DefaultBaseURL, "API base URL")
	flag.StringVar(&app.clientID, "clientID", os.Getenv("IMAGINEANYTHING_CLIENT_ID"), "client ID (env IMAGINEANYTHING_CLIENT_ID)")
	flag.StringVar(&app.secret, "clientSecret", os.Getenv("IMAGINEANYTHING_CLIENT_SECRET"), "client secret (env IMAGINEANYTHING_CLIENT_SECRET)")
	flag.StringVar(&app.post, "post", "", "create a post with this content")
	flag.BoolVar(&app.timeline, "timeline", false, "fetch the personalized timeline")
	flag.BoolVar(&app.public, "public", false, "fetch the public timeline")
	flag.IntVar(&app.limit, "limit", 0, "page size (0 means server default)")
	flag.StringVar(&app.cursor, "cursor", "", "pagination cursor")
	flag.IntVar(&app.count, "count", 1, "how many times to run the selected operations")
	flag.DurationVar(&app.interval, "interval", 2*time.Second, "interval between runs")
	flag.StringVar(&app.cache, "cache", "", "empty means default memory cache\n'file:<path>' means filecache (example: file:/tmp/cache)\n'error' means errorcache\nredis format: 'redis:<host>:<port>:<password>:<key>' (example: redis:localhost:6379::imagineanything-client)")
	flag.BoolVar(&app.concurrent, "concurrent", false, "run the operations of each round concurrently")
	flag.BoolVar(&app.debug, "debug", false, "enable debug logging")

	flag.Parse()

	tokenCache, errCache := cache.New(app.cache)
	if errCache != nil {
		log.Fatalf("cache error: %s: %v", app.cache, errCache)
	}

	a, errNew := agent.New(agent.Options{
		ClientID:     app.clientID,
		ClientSecret: app.secret,
		BaseURL:      app.baseURL,
		Cache:        tokenCache,
		Debug:        app.debug,
	})
	if errNew != nil {
		log.Fatalf("agent error: %v", errNew)
	}

	ctx := context.Background()

	handle, errMe := a.Handle(ctx)
	if errMe != nil {
		log.Fatalf("whoami error: %v", errMe)
	}
	fmt.Printf("authenticated as %s\n", handle)

	for i := 1; i <= app.count; i++ {
		if app.concurrent {
			group, groupCtx := errgroup.WithContext(ctx)
			group.Go(func() error { return runOps(groupCtx, a, app) })
			group.Go(func() error { return runOps(groupCtx, a, app) })
			if err := group.Wait(); err != nil {
				log.Fatalf("round %d/%d error: %v", i, app.count, err)
			}
		} else {
			if err := runOps(ctx, a, app); err != nil {
				log.Fatalf("round %d/%d error: %v", i, app.count, err)
			}
		}
		if i < app.count {
			fmt.Printf("round %d/%d done, sleeping %v\n", i, app.count, app.interval)
			time.Sleep(app.interval)
		}
	}
}

func runOps(ctx context.Context, a *agent.Agent, app application) error {
	if app.post != "" {
		post, errPost := a.Post(ctx, app.post, nil)
		if errPost != nil {
			return fmt.Errorf("post: %w", errPost)
		}
		fmt.Printf("created post %s\n", post.ID)
	}

	if app.timeline {
		if err := showTimeline(ctx, a, app, false); err != nil {
			return err
		}
	}

	if app.public {
		if err := showTimeline(ctx, a, app, true); err != nil {
			return err
		}
	}

	return nil
}

func showTimeline(ctx context.Context, a *agent.Agent, app application, public bool) error {
	var timeline *agent.Timeline
	var errFetch error
	if public {
		timeline, errFetch = a.GetPublicTimeline(ctx, app.limit, app.cursor)
	} else {
		timeline, errFetch = a.GetTimeline(ctx, app.limit, app.cursor)
	}
	if errFetch != nil {
		return fmt.Errorf("timeline: %w", errFetch)
	}

	for _, post := range timeline.Posts {
		fmt.Printf("%s %s: %s\n", post.CreatedAt.Format(time.RFC3339), post.Agent.Handle, post.Content)
	}
	if timeline.NextCursor != "" {
		fmt.Printf("next cursor: %s\n", timeline.NextCursor)
	}

	return nil
}
