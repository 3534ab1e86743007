package repository

import (
	"context"
	"fmt"

	"coinbank/database"
	"coinbank/models"
	"github.com/jackc/pgx/v5"
)

// ShopItemRepository implements the ShopItemRepository interface
type ShopItemRepository struct {
	q queryable
}

// NewShopItemRepository creates a new shop item repository
func NewShopItemRepository(db *database.DB) *ShopItemRepository {
	return &ShopItemRepository{q: db.Pool}
}

// newShopItemRepositoryWithTx creates a new shop item repository with a transaction
func newShopItemRepositoryWithTx(tx queryable) *ShopItemRepository {
	return &ShopItemRepository{q: tx}
}

const shopItemColumns = `id, name, credit_cost, usd_price, expires_at, added_by, added_at`

func scanShopItem(row pgx.Row) (*models.ShopItem, error) {
	var item models.ShopItem
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.CreditCost,
		&item.USDPrice,
		&item.ExpiresAt,
		&item.AddedBy,
		&item.AddedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByID retrieves a shop item, returning nil when none exists
func (r *ShopItemRepository) GetByID(ctx context.Context, id string) (*models.ShopItem, error) {
	query := `SELECT ` + shopItemColumns + ` FROM shop_items WHERE id = $1`

	item, err := scanShopItem(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop item %s: %w", id, err)
	}
	return item, nil
}

// GetAll retrieves every shop item, expired included, oldest first
func (r *ShopItemRepository) GetAll(ctx context.Context) ([]*models.ShopItem, error) {
	query := `SELECT ` + shopItemColumns + ` FROM shop_items ORDER BY added_at ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop items: %w", err)
	}
	defer rows.Close()

	var items []*models.ShopItem
	for rows.Next() {
		item, err := scanShopItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Create inserts a new shop item
func (r *ShopItemRepository) Create(ctx context.Context, item *models.ShopItem) error {
	query := `
		INSERT INTO shop_items (id, name, credit_cost, usd_price, expires_at, added_by, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		item.ID,
		item.Name,
		item.CreditCost,
		item.USDPrice,
		item.ExpiresAt,
		item.AddedBy,
		item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create shop item %s: %w", item.ID, err)
	}
	return nil
}

// Delete removes a shop item, reporting whether it existed
func (r *ShopItemRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM shop_items WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete shop item %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
