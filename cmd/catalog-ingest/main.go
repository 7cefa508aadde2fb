// Command catalog-ingest bulk-loads product catalogs from gzipped CSV
// supplier feeds (columns: id, name, price, stock).
//
// Feeds can be large and mostly contain products the database has never
// seen. IDs already in the database are tracked in a Bloom filter built from
// a single streaming pass over the products table: rows the filter rules out
// are bulk-inserted with COPY, and only the small "maybe existing" remainder
// goes through per-row upserts.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MinasAbeer/grocery-list-service/internal/storage/postgres"
)

const (
	bloomMinCapacity = 100_000
	bloomFPR         = 0.001
)

type productRow struct {
	id    string
	name  string
	price decimal.Decimal
	stock int
}

// fileResult holds the rows parsed from a single feed file.
type fileResult struct {
	path string
	rows []productRow
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz product feeds")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz files in %s", dataDir)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	known, err := buildKnownIDsFilter(ctx, pool)
	if err != nil {
		return errors.Wrap(err, "build known-ids filter")
	}

	// Parse all feed files in parallel.
	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			rows, err := parseFeed(gctx, path)
			if err != nil {
				return errors.Wrapf(err, "parse %s", path)
			}
			results[i] = fileResult{path: path, rows: rows}
			slog.Info("parsed feed", slog.String("path", path), slog.Int("rows", len(rows)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Merge in file order, first occurrence of an ID wins.
	seen := make(map[string]struct{})
	var fresh, maybe []productRow
	for _, res := range results {
		for _, row := range res.rows {
			if _, dup := seen[row.id]; dup {
				continue
			}
			seen[row.id] = struct{}{}

			if known.TestString(row.id) {
				maybe = append(maybe, row)
			} else {
				fresh = append(fresh, row)
			}
		}
	}

	if err := copyFresh(ctx, pool, fresh); err != nil {
		return errors.Wrap(err, "copy fresh products")
	}
	if err := upsertMaybe(ctx, pool, maybe); err != nil {
		return errors.Wrap(err, "upsert existing products")
	}

	slog.Info("ingested products",
		slog.Int("fresh", len(fresh)),
		slog.Int("upserted", len(maybe)))
	return nil
}

// buildKnownIDsFilter streams every product ID in the database into a Bloom
// filter. A negative answer from the filter is definitive.
func buildKnownIDsFilter(ctx context.Context, pool *pgxpool.Pool) (*bloom.BloomFilter, error) {
	var count uint
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		return nil, errors.Wrap(err, "count products")
	}
	if count < bloomMinCapacity {
		count = bloomMinCapacity
	}
	filter := bloom.NewWithEstimates(count, bloomFPR)

	rows, err := pool.Query(ctx, `SELECT id FROM products`)
	if err != nil {
		return nil, errors.Wrap(err, "select product ids")
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan product id")
		}
		filter.AddString(id)
	}
	return filter, rows.Err()
}

func parseFeed(ctx context.Context, path string) ([]productRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer zr.Close()

	cr := csv.NewReader(zr)
	cr.FieldsPerRecord = 4
	cr.ReuseRecord = true

	var rows []productRow
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && record[0] == "id" {
			continue // header
		}

		price, err := decimal.NewFromString(record[2])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: price", line)
		}
		stock, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: stock", line)
		}

		rows = append(rows, productRow{
			id:    record[0],
			name:  record[1],
			price: price,
			stock: stock,
		})
	}
}

func copyFresh(ctx context.Context, pool *pgxpool.Pool, rows []productRow) error {
	if len(rows) == 0 {
		return nil
	}

	src := make([][]any, len(rows))
	for i, row := range rows {
		src[i] = []any{row.id, row.name, row.price, row.stock}
	}

	_, err := pool.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"id", "name", "price", "stock"},
		pgx.CopyFromRows(src))
	return err
}

func upsertMaybe(ctx context.Context, pool *pgxpool.Pool, rows []productRow) error {
	for _, row := range rows {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, price, stock) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET name = $2, price = $3, stock = $4`,
			row.id, row.name, row.price, row.stock)
		if err != nil {
			return errors.Wrapf(err, "upsert product %q", row.id)
		}
	}
	return nil
}
