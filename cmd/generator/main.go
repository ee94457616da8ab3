package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/logger"
	"eventhub/internal/models"
	"eventhub/internal/repository"
	"eventhub/internal/search"
	"eventhub/internal/service"

	"github.com/google/uuid"
)

var (
	eventCount    = flag.Int("events", 30, "Number of demo events to generate")
	userCount     = flag.Int("users", 5, "Number of demo users to add to the user directory")
	clearExisting = flag.Bool("clear", false, "Remove existing bookings, events and categories before generating")
	dryRun        = flag.Bool("dry-run", false, "Show what would be generated without making changes")
	reindex       = flag.Bool("reindex", false, "Rebuild the Elasticsearch index from the events table and exit")
)

var demoCategories = []string{"Music", "Sports", "Theatre", "Comedy", "Conferences", "Workshops"}

var demoVenues = []string{
	"Blue Hall", "City Arena", "Riverside Stage", "Old Town Theatre",
	"Expo Center", "Harbor Club", "Central Park Amphitheatre",
}

var demoTitles = map[string][]string{
	"Music":       {"Jazz Night", "Symphony Evening", "Indie Showcase", "Rock Festival"},
	"Sports":      {"Cup Final", "City Marathon", "Basketball Derby", "Boxing Gala"},
	"Theatre":     {"Hamlet", "The Seagull", "Improv Marathon", "Ballet Premiere"},
	"Comedy":      {"Stand-up Friday", "Open Mic", "Sketch Show"},
	"Conferences": {"Go Meetup", "Cloud Summit", "Data Days"},
	"Workshops":   {"Pottery Class", "Photography Walk", "Cooking Masterclass"},
}

type Generator struct {
	db    *database.DB
	repos *repository.Repositories
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	g := &Generator{db: db, repos: repository.NewRepositories(db)}

	if *reindex {
		if err := g.Reindex(ctx, cfg.Elasticsearch); err != nil {
			slog.Error("Failed to rebuild search index", "error", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("Starting demo data generator...", "events", *eventCount, "users", *userCount, "dry_run", *dryRun)

	if err := g.Generate(ctx); err != nil {
		slog.Error("Failed to generate demo data", "error", err)
		os.Exit(1)
	}

	slog.Info("Demo data generation completed successfully!")
}

func (g *Generator) Generate(ctx context.Context) error {
	if *clearExisting {
		if err := g.clear(ctx); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	categories, err := g.ensureCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := g.seedUsers(ctx); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	created := 0
	for i := 0; i < *eventCount; i++ {
		category := demoCategories[rand.IntN(len(demoCategories))]
		draft := randomDraft(category, categories[category], i)

		if *dryRun {
			slog.Info("[DRY RUN] Would create event", "name", draft.Name, "category", category, "venue", draft.Venue, "price", draft.Price)
			continue
		}

		event, err := g.repos.Events.Create(ctx, draft)
		if err != nil {
			slog.Error("Failed to create event", "name", draft.Name, "error", err)
			continue
		}
		created++
		slog.Debug("Created event", "event_id", event.ID, "name", event.Name)
	}

	slog.Info("Generated events", "created", created)
	return nil
}

func (g *Generator) clear(ctx context.Context) error {
	if *dryRun {
		slog.Info("[DRY RUN] Would remove existing bookings, events and categories")
		return nil
	}

	if _, err := g.db.ExecContext(ctx, `TRUNCATE bookings, events, categories`); err != nil {
		return err
	}
	if err := g.repos.Users.DeleteAll(ctx); err != nil {
		return err
	}
	slog.Info("Existing data removed")
	return nil
}

// ensureCategories creates the demo categories, reusing those that already exist by name
func (g *Generator) ensureCategories(ctx context.Context) (map[string]uuid.UUID, error) {
	existing, err := g.repos.Categories.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uuid.UUID, len(demoCategories))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	for _, name := range demoCategories {
		if _, ok := ids[name]; ok {
			continue
		}
		if *dryRun {
			slog.Info("[DRY RUN] Would create category", "name", name)
			ids[name] = uuid.New()
			continue
		}

		category, err := g.repos.Categories.Create(ctx, name)
		if err != nil {
			if errors.Is(err, models.ErrConflict) {
				continue
			}
			return nil, err
		}
		ids[name] = category.ID
		slog.Info("Created category", "category_id", category.ID, "name", name)
	}
	return ids, nil
}

func (g *Generator) seedUsers(ctx context.Context) error {
	for i := 1; i <= *userCount; i++ {
		user := models.UserSummary{
			ID:       uuid.New(),
			Username: fmt.Sprintf("demo%d", i),
			Email:    fmt.Sprintf("demo%d@eventhub.local", i),
		}
		if *dryRun {
			slog.Info("[DRY RUN] Would add user", "username", user.Username)
			continue
		}
		if err := g.repos.Users.Upsert(ctx, user); err != nil {
			return err
		}
		slog.Info("Added demo user", "user_id", user.ID, "username", user.Username)
	}
	return nil
}

// Reindex mirrors every stored event into Elasticsearch
func (g *Generator) Reindex(ctx context.Context, cfg config.ElasticsearchConfig) error {
	cfg.Enabled = true
	es, err := search.NewElasticsearchClient(ctx, cfg)
	if err != nil {
		return err
	}

	events := service.NewEventService(g.repos.Events, es, nil, service.Catalog{})
	if *dryRun {
		slog.Info("[DRY RUN] Would rebuild index", "index", cfg.Index)
		return nil
	}

	start := time.Now()
	count, err := events.IndexAll(ctx, func(fn func(*models.Event) error) error {
		return g.repos.Events.ListAll(ctx, fn)
	})
	if err != nil {
		return err
	}
	slog.Info("Search index rebuilt", "events", count, "took_ms", time.Since(start).Milliseconds())
	return nil
}

func randomDraft(category string, categoryID uuid.UUID, n int) *models.EventDraft {
	titles := demoTitles[category]
	title := titles[rand.IntN(len(titles))]
	venue := demoVenues[rand.IntN(len(demoVenues))]

	days := rand.IntN(90) + 1
	hour := 12 + rand.IntN(10)
	date := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)

	price := 0.0
	if rand.IntN(5) > 0 {
		price = math.Round(rand.Float64()*200*2) / 2
	}

	seed := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	return &models.EventDraft{
		Name:        fmt.Sprintf("%s #%d", title, n+1),
		Description: fmt.Sprintf("%s at %s. A demo %s event.", title, venue, strings.ToLower(category)),
		CategoryID:  categoryID,
		Date:        date,
		Venue:       venue,
		Price:       price,
		Images: []string{
			fmt.Sprintf("https://picsum.photos/seed/%s-%d/800/600", seed, n),
		},
	}
}
