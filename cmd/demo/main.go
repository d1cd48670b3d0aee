package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/nikolayk812/shoplocal/config"
	"github.com/nikolayk812/shoplocal/internal/domain"
	"github.com/nikolayk812/shoplocal/internal/repository"
	"github.com/nikolayk812/shoplocal/internal/store"
	"github.com/nikolayk812/shoplocal/pkg/logger"
)

// Scripted session against a live database: wires the store into both
// repositories, subscribes a logging observer to each, and runs through
// the cart and search-history operations.
func main() {
	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx := context.Background()

	poolCfg, err := pgxpool.ParseConfig(cfg.DBUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("parse DB config")
	}
	poolCfg.MaxConns = cfg.DBMaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to DB")
	}
	defer pool.Close()

	st, err := store.New(pool)
	if err != nil {
		log.Fatal().Err(err).Msg("create store")
	}

	carts, err := repository.NewCart(st, *log)
	if err != nil {
		log.Fatal().Err(err).Msg("create cart repository")
	}

	history, err := repository.NewSearchHistory(st, *log)
	if err != nil {
		log.Fatal().Err(err).Msg("create search history repository")
	}

	cartToken := carts.Subscribe(func(event domain.CartEvent) {
		switch e := event.(type) {
		case domain.ItemAdded:
			log.Info().Int64("item_id", e.Product.ID).Int64("quantity", e.Quantity).Msg("item added")
		case domain.ItemRemoved:
			log.Info().Int64("item_id", e.Product.ID).Int64("quantity", e.Quantity).Msg("item removed")
		case domain.CartMoved:
			log.Info().Int64("item_id", e.ItemID).Int64("from", e.From).Int64("to", e.To).Msg("line moved")
		case domain.CartCleared:
			log.Info().Msg("cart cleared")
		}
	})
	defer carts.Unsubscribe(cartToken)

	historyToken := history.Subscribe(func(event domain.HistoryChanged) {
		log.Info().Str("query", event.Query.Query).Time("last_access", event.Query.LastAccess).Msg("history changed")
	})
	defer history.Unsubscribe(historyToken)

	rub := currency.MustParseISO("RUB")
	chair := domain.Product{
		ID:    1,
		Title: "Wooden chair",
		Price: domain.Money{Amount: decimal.NewFromInt(4990), Currency: rub},
		Category: domain.Category{
			ID:   3,
			Name: "Furniture",
		},
		Images: []string{"https://example.com/chair.png"},
	}
	lamp := domain.Product{
		ID:    2,
		Title: "Desk lamp",
		Price: domain.Money{Amount: decimal.NewFromInt(1290), Currency: rub},
		Category: domain.Category{
			ID:   3,
			Name: "Furniture",
		},
	}

	for _, product := range []domain.Product{chair, chair, lamp} {
		if err := carts.AddToCart(ctx, product); err != nil {
			log.Fatal().Err(err).Msg("add to cart")
		}
	}

	if err := carts.MovePosition(ctx, lamp.ID, 0); err != nil {
		log.Fatal().Err(err).Msg("move position")
	}

	lines := carts.GetCart(ctx)
	total, err := domain.CartTotal(lines)
	if err != nil {
		log.Fatal().Err(err).Msg("cart total")
	}
	for _, line := range lines {
		log.Info().
			Int64("position", line.Position).
			Str("title", line.Title).
			Int64("quantity", line.Quantity).
			Str("subtotal", line.Subtotal().String()).
			Msg("cart line")
	}
	log.Info().Str("total", total.String()).Msg("cart total")

	queries := []domain.ProductFilters{
		domain.RangeFilters("chair", 1000, 10000, domain.UnsetCategory),
		domain.ExactPriceFilters("lamp", 1290, 3),
		domain.RangeFilters("chair", 1000, 10000, domain.UnsetCategory), // repeat, bumps the first
	}
	for _, filters := range queries {
		if err := history.SaveQuery(ctx, filters); err != nil {
			log.Fatal().Err(err).Msg("save query")
		}
	}

	for _, record := range history.GetRecent(ctx, cfg.RecentSearchLimit) {
		log.Info().Str("query", record.Query).Time("last_access", record.LastAccess).Msg("recent search")
	}

	if err := carts.ClearCart(ctx); err != nil {
		log.Fatal().Err(err).Msg("clear cart")
	}
}
