package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/puzzlehunt/internal/hunt"
)

// SQLiteStore implements progress.Store, Directory and AdminStore over one
// libSQL database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) Booking(ctx context.Context, code string) (hunt.Aggregate, error) {
	return loadAggregate(ctx, s.db, code)
}

// WithBooking runs fn against the aggregate inside a transaction and
// persists the instance when fn asks for it.
func (s *SQLiteStore) WithBooking(ctx context.Context, code string, fn func(*hunt.Aggregate) (bool, error)) (hunt.Aggregate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hunt.Aggregate{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	agg, err := loadAggregate(ctx, tx, code)
	if err != nil {
		return hunt.Aggregate{}, err
	}

	write, err := fn(&agg)
	if err != nil {
		return hunt.Aggregate{}, err
	}
	if write && agg.Instance != nil {
		if agg.Instance.ID == "" {
			agg.Instance.ID = uuid.NewString()
			err = insertInstance(ctx, tx, agg.Instance)
		} else {
			err = updateInstance(ctx, tx, agg.Instance)
		}
		if err != nil {
			return hunt.Aggregate{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return hunt.Aggregate{}, fmt.Errorf("commit: %w", err)
	}
	return agg, nil
}

func loadAggregate(ctx context.Context, q queryer, code string) (hunt.Aggregate, error) {
	var (
		agg                           hunt.Aggregate
		start, expires, voucher, note sql.NullString
		bookingCreated, teamCreated   string
		gameCreated, players          string
	)
	err := q.QueryRowContext(ctx, `
		SELECT b.id, b.code, b.team_id, b.game_id, b.start_time, b.expires_at,
			b.voucher, b.paid, b.notes, b.created_at,
			t.name, t.players, t.created_at,
			g.name, g.description, g.created_at
		FROM bookings b
		JOIN teams t ON t.id = b.team_id
		JOIN games g ON g.id = b.game_id
		WHERE b.code = ?
	`, code).Scan(
		&agg.Booking.ID, &agg.Booking.Code, &agg.Booking.TeamID, &agg.Booking.GameID, &start, &expires,
		&voucher, &agg.Booking.Paid, &note, &bookingCreated,
		&agg.Team.Name, &players, &teamCreated,
		&agg.Game.Name, &agg.Game.Description, &gameCreated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.Aggregate{}, hunt.ErrBookingNotFound
	}
	if err != nil {
		return hunt.Aggregate{}, fmt.Errorf("loading booking: %w", err)
	}

	agg.Booking.StartTime = parseNullTime(start)
	agg.Booking.ExpiresAt = parseNullTime(expires)
	agg.Booking.Voucher = nullString(voucher)
	agg.Booking.Notes = nullString(note)
	agg.Booking.CreatedAt = parseTime(bookingCreated)

	agg.Team.ID = agg.Booking.TeamID
	agg.Team.CreatedAt = parseTime(teamCreated)
	if agg.Team.Players, err = decodePlayers(players); err != nil {
		return hunt.Aggregate{}, err
	}

	agg.Game.ID = agg.Booking.GameID
	agg.Game.CreatedAt = parseTime(gameCreated)
	if agg.Game.Puzzles, err = listPuzzles(ctx, q, agg.Game.ID); err != nil {
		return hunt.Aggregate{}, err
	}

	if agg.Instance, err = instanceByBooking(ctx, q, agg.Booking.ID); err != nil {
		return hunt.Aggregate{}, err
	}
	return agg, nil
}

func listPuzzles(ctx context.Context, q queryer, gameID string) (hunt.Catalog, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, game_id, ord, question, answer, type, choices, location_data, image_url
		FROM puzzles
		WHERE game_id = ?
		ORDER BY ord
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("listing puzzles: %w", err)
	}
	defer rows.Close()

	cat := hunt.Catalog{}
	for rows.Next() {
		p, err := scanPuzzle(rows)
		if err != nil {
			return nil, err
		}
		cat = append(cat, p)
	}
	return cat, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPuzzle(sc scanner) (hunt.Puzzle, error) {
	var (
		p       hunt.Puzzle
		choices sql.NullString
	)
	if err := sc.Scan(&p.ID, &p.GameID, &p.Order, &p.Question, &p.Answer, &p.Type, &choices, &p.LocationData, &p.ImageURL); err != nil {
		return hunt.Puzzle{}, err
	}
	if choices.Valid && choices.String != "" {
		if err := json.Unmarshal([]byte(choices.String), &p.Choices); err != nil {
			return hunt.Puzzle{}, fmt.Errorf("decoding choices for puzzle %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func instanceByBooking(ctx context.Context, q queryer, bookingID string) (*hunt.GameInstance, error) {
	var (
		gi              hunt.GameInstance
		order           sql.NullInt64
		started, solved string
		completed       sql.NullString
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, team_id, game_id, booking_id, current_puzzle_order, started_at, completed_at, solved_puzzles
		FROM game_instances
		WHERE booking_id = ?
	`, bookingID).Scan(&gi.ID, &gi.TeamID, &gi.GameID, &gi.BookingID, &order, &started, &completed, &solved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading instance: %w", err)
	}

	if order.Valid {
		o := int(order.Int64)
		gi.CurrentPuzzleOrder = &o
	}
	gi.StartedAt = parseTime(started)
	gi.CompletedAt = parseNullTime(completed)
	gi.SolvedPuzzles = map[string]time.Time{}
	if err := json.Unmarshal([]byte(solved), &gi.SolvedPuzzles); err != nil {
		return nil, fmt.Errorf("decoding solved puzzles: %w", err)
	}
	return &gi, nil
}

func insertInstance(ctx context.Context, q queryer, gi *hunt.GameInstance) error {
	solved, err := json.Marshal(gi.SolvedPuzzles)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO game_instances (id, team_id, game_id, booking_id, current_puzzle_order, started_at, completed_at, solved_puzzles)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, gi.ID, gi.TeamID, gi.GameID, gi.BookingID, deref(gi.CurrentPuzzleOrder), formatTime(gi.StartedAt), formatNullTime(gi.CompletedAt), string(solved))
	if err != nil {
		return fmt.Errorf("inserting instance: %w", err)
	}
	return nil
}

func updateInstance(ctx context.Context, q queryer, gi *hunt.GameInstance) error {
	solved, err := json.Marshal(gi.SolvedPuzzles)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE game_instances
		SET current_puzzle_order = ?, completed_at = ?, solved_puzzles = ?
		WHERE id = ?
	`, deref(gi.CurrentPuzzleOrder), formatNullTime(gi.CompletedAt), string(solved), gi.ID)
	if err != nil {
		return fmt.Errorf("updating instance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hunt.ErrNoInstanceFound
	}
	return nil
}

func decodePlayers(raw string) ([]hunt.Player, error) {
	players := []hunt.Player{}
	if raw == "" {
		return players, nil
	}
	if err := json.Unmarshal([]byte(raw), &players); err != nil {
		return nil, fmt.Errorf("decoding players: %w", err)
	}
	return players, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

// deref turns a nil pointer into a SQL NULL.
func deref[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
