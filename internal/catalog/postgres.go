package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/linkbot/core/logger"
)

// Repository reads and seeds the catalog tables.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type categoryRow struct {
	Key     string `db:"key"`
	Button  string `db:"button"`
	Text    string `db:"display_text"`
	OpenAll bool   `db:"open_all"`
}

type linkRow struct {
	CategoryKey string `db:"category_key"`
	Name        string `db:"name"`
	URL         string `db:"url"`
}

const (
	selectMeta       = `SELECT name, list_command, greeting, all_title, all_button, share_text FROM catalog_meta WHERE id = 1`
	selectCategories = `SELECT key, button, display_text, open_all FROM categories ORDER BY position, key`
	selectLinks      = `SELECT category_key, name, url FROM links ORDER BY category_key, position, id`
	countCategories  = `SELECT COUNT(*) FROM categories`
)

// Load builds a catalog from the database.
func (r *Repository) Load(ctx context.Context) (*Catalog, error) {
	var meta Spec
	err := r.db.GetContext(ctx, &meta, selectMeta)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("select catalog meta: %w", err)
	}
	var cats []categoryRow
	if err := r.db.SelectContext(ctx, &cats, selectCategories); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	var links []linkRow
	if err := r.db.SelectContext(ctx, &links, selectLinks); err != nil {
		return nil, fmt.Errorf("select links: %w", err)
	}

	c, err := New(assemble(meta, cats, links))
	if err != nil {
		return nil, err
	}
	logger.Catalog.Info("catalog loaded",
		slog.String("event", "catalog.load"),
		slog.String("source", "postgres"),
		slog.Int("count", c.Len()),
	)
	return c, nil
}

// assemble groups link rows under their categories, keeping row order.
// Links whose category is missing are dropped.
func assemble(meta Spec, cats []categoryRow, links []linkRow) Spec {
	byKey := make(map[string][]Link, len(cats))
	for _, l := range links {
		byKey[l.CategoryKey] = append(byKey[l.CategoryKey], Link{Name: l.Name, URL: l.URL})
	}
	meta.Categories = make([]Category, 0, len(cats))
	for _, row := range cats {
		meta.Categories = append(meta.Categories, Category{
			Key:     row.Key,
			Button:  row.Button,
			Text:    row.Text,
			OpenAll: row.OpenAll,
			Links:   byKey[row.Key],
		})
	}
	return meta
}

// Empty reports whether no categories are stored yet.
func (r *Repository) Empty(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, countCategories); err != nil {
		return false, fmt.Errorf("count categories: %w", err)
	}
	return n == 0, nil
}

// Seed writes c into empty tables inside one transaction. Tables that
// already hold categories are left untouched.
func (r *Repository) Seed(ctx context.Context, c *Catalog) (seeded bool, err error) {
	empty, err := r.Empty(ctx)
	if err != nil || !empty {
		return false, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	s := c.Spec()
	if _, err = tx.NamedExecContext(ctx, `INSERT INTO catalog_meta (id, name, list_command, greeting, all_title, all_button, share_text)
VALUES (1, :name, :list_command, :greeting, :all_title, :all_button, :share_text)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, list_command = EXCLUDED.list_command,
greeting = EXCLUDED.greeting, all_title = EXCLUDED.all_title, all_button = EXCLUDED.all_button,
share_text = EXCLUDED.share_text`, s); err != nil {
		return false, fmt.Errorf("insert catalog meta: %w", err)
	}
	for i, cat := range s.Categories {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO categories (key, position, button, display_text, open_all) VALUES ($1, $2, $3, $4, $5)`,
			cat.Key, i, cat.Button, cat.Text, cat.OpenAll); err != nil {
			return false, fmt.Errorf("insert category %q: %w", cat.Key, err)
		}
		for j, l := range cat.Links {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO links (category_key, position, name, url) VALUES ($1, $2, $3, $4)`,
				cat.Key, j, l.Name, l.URL); err != nil {
				return false, fmt.Errorf("insert link %q: %w", l.Name, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}

	logger.SEED.Info("catalog seeded",
		slog.String("event", "db.seed"),
		slog.String("preset", s.Name),
		slog.Int("count", len(s.Categories)),
	)
	return true, nil
}
