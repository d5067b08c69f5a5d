package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gatherly/internal/domain"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// indexes on (event_id, email) and (event_id, phone).
const uniqueViolation = "23505"

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{
		DB: db,
	}
}

// InsertIfRoom performs the capacity check and the insert in one transaction.
// The event row is locked FOR UPDATE for the duration, so concurrent joins on
// the same event serialize here: two callers racing for the last seat cannot
// both observe room. Returns (false, nil) when the venue is full.
func (r *guestRepository) InsertIfRoom(ctx context.Context, g *domain.Guest) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	lockQuery := `
		SELECT COALESCE(v.capacity, 0)
		FROM events e
		LEFT JOIN venues v ON v.id = e.venue_id
		WHERE e.id = $1
		FOR UPDATE OF e
	`
	if err := tx.QueryRowContext(ctx, lockQuery, g.EventID).Scan(&capacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, err
	}

	if capacity > 0 {
		var count int
		countQuery := `SELECT COUNT(*) FROM guests WHERE event_id = $1`
		if err := tx.QueryRowContext(ctx, countQuery, g.EventID).Scan(&count); err != nil {
			return false, err
		}
		if count >= capacity {
			return false, nil
		}
	}

	insertQuery := `
		INSERT INTO guests (id, event_id, user_id, first_name, last_name, email, phone, country_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		g.ID, g.EventID, g.UserID, g.FirstName, g.LastName, g.Email, nullString(g.Phone), g.CountryCode, g.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return false, domain.ErrAlreadyRegistered
		}
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func (r *guestRepository) Remove(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM guests WHERE event_id = $1 AND user_id = $2`
	// Zero rows affected is fine: leave is idempotent.
	_, err := r.DB.ExecContext(ctx, query, eventID, userID)
	return err
}

func (r *guestRepository) RemoveByID(ctx context.Context, eventID, guestID string) error {
	query := `DELETE FROM guests WHERE event_id = $1 AND id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, guestID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *guestRepository) GetByID(ctx context.Context, guestID string) (*domain.Guest, error) {
	query := `
		SELECT id, event_id, user_id, first_name, last_name, email, phone, country_code, created_at
		FROM guests
		WHERE id = $1
	`
	return scanGuest(r.DB.QueryRowContext(ctx, query, guestID))
}

func (r *guestRepository) Update(ctx context.Context, g *domain.Guest) error {
	query := `
		UPDATE guests
		SET first_name = $1, last_name = $2, email = $3, phone = $4, country_code = $5
		WHERE id = $6
	`
	result, err := r.DB.ExecContext(ctx, query,
		g.FirstName, g.LastName, g.Email, nullString(g.Phone), g.CountryCode, g.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *guestRepository) EmailExists(ctx context.Context, eventID, email string, excludeGuestID *string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM guests
			WHERE event_id = $1 AND email = $2 AND ($3::uuid IS NULL OR id <> $3)
		)
	`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, email, excludeGuestID).Scan(&exists)
	return exists, err
}

func (r *guestRepository) PhoneExists(ctx context.Context, eventID, phone string, excludeGuestID *string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM guests
			WHERE event_id = $1 AND phone = $2 AND ($3::uuid IS NULL OR id <> $3)
		)
	`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, phone, excludeGuestID).Scan(&exists)
	return exists, err
}

func (r *guestRepository) IsUserJoined(ctx context.Context, eventID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM guests WHERE event_id = $1 AND user_id = $2)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&exists)
	return exists, err
}

func (r *guestRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM guests WHERE event_id = $1`
	var count int
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&count)
	return count, err
}

func (r *guestRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Guest, error) {
	query := `
		SELECT id, event_id, user_id, first_name, last_name, email, phone, country_code, created_at
		FROM guests
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (r *guestRepository) ListPageByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	pattern := "%" + search + "%"

	countQuery := `
		SELECT COUNT(*) FROM guests
		WHERE event_id = $1
		  AND ($2 = '' OR first_name ILIKE $3 OR last_name ILIKE $3 OR email ILIKE $3)
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID, search, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, event_id, user_id, first_name, last_name, email, phone, country_code, created_at
		FROM guests
		WHERE event_id = $1
		  AND ($2 = '' OR first_name ILIKE $3 OR last_name ILIKE $3 OR email ILIKE $3)
		ORDER BY created_at
		LIMIT $4 OFFSET $5
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, search, pattern, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, 0, err
		}
		guests = append(guests, g)
	}
	return guests, total, rows.Err()
}

func (r *guestRepository) ListEventIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT DISTINCT event_id FROM guests WHERE user_id = $1`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *guestRepository) UpdateContactByUserID(ctx context.Context, userID string, p *domain.UserProfile) error {
	query := `
		UPDATE guests
		SET first_name = $1, last_name = $2, email = $3, phone = $4, country_code = $5
		WHERE user_id = $6
	`
	_, err := r.DB.ExecContext(ctx, query,
		p.FirstName, p.LastName, p.Email, nullString(p.Phone), p.CountryCode, userID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner) (*domain.Guest, error) {
	g := &domain.Guest{}
	var userID, phone sql.NullString
	err := row.Scan(&g.ID, &g.EventID, &userID, &g.FirstName, &g.LastName, &g.Email, &phone, &g.CountryCode, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if userID.Valid {
		g.UserID = &userID.String
	}
	g.Phone = phone.String
	return g, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
