package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ToggleWishlist removes name from the user's wishlist if present and adds
// it otherwise. It reports whether the item was added.
func (r *Repository) ToggleWishlist(ctx context.Context, userID int64, name string) (bool, error) {
	added := false
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM wishlist WHERE user_id = $1 AND prod_name = $2`,
			userID, name,
		)
		if err != nil {
			return fmt.Errorf("delete wishlist item: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO wishlist (user_id, prod_name) VALUES ($1, $2)
			 ON CONFLICT (user_id, prod_name) DO NOTHING`,
			userID, name,
		); err != nil {
			return fmt.Errorf("insert wishlist item: %w", err)
		}
		added = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("toggle wishlist for user %d: %w", userID, err)
	}
	return added, nil
}

func (r *Repository) ListWishlist(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT prod_name FROM wishlist WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query wishlist for user %d: %w", userID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist items: %w", err)
	}
	return names, nil
}
