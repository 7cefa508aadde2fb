package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MinasAbeer/grocery-list-service/internal/storage/postgres"
)

type productJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		demoList     string
		demoOwner    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&demoList, "demo-list", "Weekly groceries", "name of the demo grocery list to create (empty skips it)")
	flag.StringVar(&demoOwner, "demo-owner", "demo", "owner of the demo grocery list")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, demoList, demoOwner); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, demoList, demoOwner string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if demoList != "" {
		if err := seedDemoList(ctx, pool, demoList, demoOwner); err != nil {
			return errors.Wrap(err, "seed demo list")
		}
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products file")
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, price, stock) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET name = $2, price = $3, stock = $4`,
			p.ID, p.Name, p.Price, p.Stock)
		if err != nil {
			return errors.Wrapf(err, "insert product %q", p.ID)
		}
	}

	slog.Info("seeded products", slog.Int("count", len(products)))
	return nil
}

func seedDemoList(ctx context.Context, pool *pgxpool.Pool, name, owner string) error {
	id := uuid.New().String()
	tag, err := pool.Exec(ctx,
		`INSERT INTO grocery_lists (id, name, color, owner_id)
		 SELECT $1, $2, '#2e8b57', $3
		 WHERE NOT EXISTS (SELECT 1 FROM grocery_lists WHERE name = $2 AND owner_id = $3)`,
		id, name, owner)
	if err != nil {
		return errors.Wrap(err, "insert demo list")
	}
	if tag.RowsAffected() == 0 {
		slog.Info("demo list already exists", slog.String("name", name))
		return nil
	}

	slog.Info("seeded demo list", slog.String("id", id), slog.String("name", name))
	return nil
}
