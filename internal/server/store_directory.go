package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/playperu/puzzlehunt/internal/bookingcode"
	"github.com/playperu/puzzlehunt/internal/hunt"
)

// --- Games ---

func (s *SQLiteStore) ListGames(ctx context.Context) ([]AdminGameSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.description,
			(SELECT COUNT(*) FROM puzzles p WHERE p.game_id = g.id),
			g.created_at
		FROM games g
		ORDER BY g.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []AdminGameSummary{}
	for rows.Next() {
		var (
			g       AdminGameSummary
			created string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.PuzzleCount, &created); err != nil {
			return nil, err
		}
		g.CreatedAt = parseTime(created)
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *SQLiteStore) CreateGame(ctx context.Context, req AdminGameRequest) (AdminGameDetail, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AdminGameDetail{}, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO games (id, name, description) VALUES (?, ?, ?)
	`, id, req.Name, req.Description); err != nil {
		return AdminGameDetail{}, fmt.Errorf("inserting game: %w", err)
	}
	for i, p := range req.Puzzles {
		if _, err := insertPuzzle(ctx, tx, id, i+1, p); err != nil {
			return AdminGameDetail{}, err
		}
	}

	detail, err := gameDetail(ctx, tx, id)
	if err != nil {
		return AdminGameDetail{}, err
	}
	return detail, tx.Commit()
}

func (s *SQLiteStore) GetGame(ctx context.Context, id string) (AdminGameDetail, error) {
	return gameDetail(ctx, s.db, id)
}

func (s *SQLiteStore) UpdateGame(ctx context.Context, id string, req AdminGameRequest) (AdminGameDetail, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE games SET name = ?, description = ? WHERE id = ?
	`, req.Name, req.Description, id)
	if err != nil {
		return AdminGameDetail{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return AdminGameDetail{}, ErrNotFound
	}
	return gameDetail(ctx, s.db, id)
}

func (s *SQLiteStore) DeleteGame(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, `DELETE FROM games WHERE id = ?`, id)
}

func gameDetail(ctx context.Context, q queryer, id string) (AdminGameDetail, error) {
	var (
		d       AdminGameDetail
		created string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, name, description, created_at FROM games WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &d.Description, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	if err != nil {
		return d, err
	}
	d.CreatedAt = parseTime(created)

	cat, err := listPuzzles(ctx, q, id)
	if err != nil {
		return d, err
	}
	d.Puzzles = make([]AdminPuzzle, len(cat))
	for i, p := range cat {
		d.Puzzles[i] = AdminPuzzle{Puzzle: p, Answer: p.Answer}
	}
	return d, nil
}

func gameExists(ctx context.Context, q queryer, id string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE id = ?`, id).Scan(&n)
	return n > 0, err
}

// --- Puzzles ---

// AddPuzzle appends a puzzle after the game's highest order.
func (s *SQLiteStore) AddPuzzle(ctx context.Context, gameID string, req AdminPuzzleRequest) (AdminPuzzle, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AdminPuzzle{}, err
	}
	defer tx.Rollback()

	ok, err := gameExists(ctx, tx, gameID)
	if err != nil {
		return AdminPuzzle{}, err
	}
	if !ok {
		return AdminPuzzle{}, ErrNotFound
	}

	var next int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(ord), 0) + 1 FROM puzzles WHERE game_id = ?
	`, gameID).Scan(&next); err != nil {
		return AdminPuzzle{}, err
	}

	p, err := insertPuzzle(ctx, tx, gameID, next, req)
	if err != nil {
		return AdminPuzzle{}, err
	}
	return p, tx.Commit()
}

func insertPuzzle(ctx context.Context, q queryer, gameID string, order int, req AdminPuzzleRequest) (AdminPuzzle, error) {
	choices, err := encodeChoices(req.Choices)
	if err != nil {
		return AdminPuzzle{}, err
	}
	p := hunt.Puzzle{
		ID:           uuid.NewString(),
		GameID:       gameID,
		Order:        order,
		Question:     req.Question,
		Answer:       req.Answer,
		Type:         req.Type,
		Choices:      req.Choices,
		LocationData: req.LocationData,
		ImageURL:     req.ImageURL,
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO puzzles (id, game_id, ord, question, answer, type, choices, location_data, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.GameID, p.Order, p.Question, p.Answer, string(p.Type), choices, p.LocationData, p.ImageURL)
	if err != nil {
		return AdminPuzzle{}, fmt.Errorf("inserting puzzle: %w", err)
	}
	return AdminPuzzle{Puzzle: p, Answer: p.Answer}, nil
}

func (s *SQLiteStore) UpdatePuzzle(ctx context.Context, gameID, puzzleID string, req AdminPuzzleRequest) (AdminPuzzle, error) {
	choices, err := encodeChoices(req.Choices)
	if err != nil {
		return AdminPuzzle{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE puzzles
		SET question = ?, answer = ?, type = ?, choices = ?, location_data = ?, image_url = ?
		WHERE id = ? AND game_id = ?
	`, req.Question, req.Answer, string(req.Type), choices, req.LocationData, req.ImageURL, puzzleID, gameID)
	if err != nil {
		return AdminPuzzle{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return AdminPuzzle{}, ErrNotFound
	}

	p, err := scanPuzzle(s.db.QueryRowContext(ctx, `
		SELECT id, game_id, ord, question, answer, type, choices, location_data, image_url
		FROM puzzles WHERE id = ?
	`, puzzleID))
	if err != nil {
		return AdminPuzzle{}, err
	}
	return AdminPuzzle{Puzzle: p, Answer: p.Answer}, nil
}

func (s *SQLiteStore) DeletePuzzle(ctx context.Context, gameID, puzzleID string) error {
	return deleteByID(ctx, s.db, `DELETE FROM puzzles WHERE id = ? AND game_id = ?`, puzzleID, gameID)
}

// MovePuzzle swaps a puzzle's order with its neighbour above (up) or below.
// Both rows change in one transaction; the puzzle is parked at order -1 in
// between so UNIQUE(game_id, ord) holds after every statement.
func (s *SQLiteStore) MovePuzzle(ctx context.Context, gameID, puzzleID string, up bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var order int
	err = tx.QueryRowContext(ctx, `
		SELECT ord FROM puzzles WHERE id = ? AND game_id = ?
	`, puzzleID, gameID).Scan(&order)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	neighbour := `SELECT id, ord FROM puzzles WHERE game_id = ? AND ord > ? ORDER BY ord ASC LIMIT 1`
	if up {
		neighbour = `SELECT id, ord FROM puzzles WHERE game_id = ? AND ord < ? ORDER BY ord DESC LIMIT 1`
	}
	var (
		otherID    string
		otherOrder int
	)
	err = tx.QueryRowContext(ctx, neighbour, gameID, order).Scan(&otherID, &otherOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCannotMove
	}
	if err != nil {
		return err
	}

	for _, step := range []struct {
		id  string
		ord int
	}{
		{puzzleID, -1},
		{otherID, order},
		{puzzleID, otherOrder},
	} {
		if _, err := tx.ExecContext(ctx, `UPDATE puzzles SET ord = ? WHERE id = ?`, step.ord, step.id); err != nil {
			return fmt.Errorf("reordering puzzles: %w", err)
		}
	}
	return tx.Commit()
}

func encodeChoices(choices []hunt.Choice) (any, error) {
	if len(choices) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(choices)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// --- Teams ---

func (s *SQLiteStore) ListTeams(ctx context.Context) ([]hunt.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, players, created_at FROM teams ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []hunt.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func scanTeam(sc scanner) (hunt.Team, error) {
	var (
		t                hunt.Team
		players, created string
	)
	if err := sc.Scan(&t.ID, &t.Name, &players, &created); err != nil {
		return hunt.Team{}, err
	}
	t.CreatedAt = parseTime(created)
	var err error
	t.Players, err = decodePlayers(players)
	return t, err
}

func teamByID(ctx context.Context, q queryer, id string) (hunt.Team, error) {
	t, err := scanTeam(q.QueryRowContext(ctx, `
		SELECT id, name, players, created_at FROM teams WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.Team{}, ErrNotFound
	}
	return t, err
}

func encodePlayers(players []hunt.Player) (string, error) {
	if players == nil {
		players = []hunt.Player{}
	}
	b, err := json.Marshal(players)
	return string(b), err
}

func (s *SQLiteStore) CreateTeam(ctx context.Context, req AdminTeamRequest) (hunt.Team, error) {
	players, err := encodePlayers(req.Players)
	if err != nil {
		return hunt.Team{}, err
	}
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, players) VALUES (?, ?, ?)
	`, id, req.Name, players); err != nil {
		return hunt.Team{}, fmt.Errorf("inserting team: %w", err)
	}
	return teamByID(ctx, s.db, id)
}

func (s *SQLiteStore) GetTeam(ctx context.Context, id string) (AdminTeamDetail, error) {
	t, err := teamByID(ctx, s.db, id)
	if err != nil {
		return AdminTeamDetail{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.code, g.id, g.name
		FROM bookings b
		JOIN games g ON g.id = b.game_id
		WHERE b.team_id = ?
		ORDER BY b.created_at
	`, id)
	if err != nil {
		return AdminTeamDetail{}, err
	}
	defer rows.Close()

	detail := AdminTeamDetail{Team: t, Bookings: []AdminTeamBooking{}}
	for rows.Next() {
		var b AdminTeamBooking
		if err := rows.Scan(&b.Code, &b.GameID, &b.GameName); err != nil {
			return AdminTeamDetail{}, err
		}
		detail.Bookings = append(detail.Bookings, b)
	}
	return detail, rows.Err()
}

func (s *SQLiteStore) UpdateTeam(ctx context.Context, id string, req AdminTeamRequest) (hunt.Team, error) {
	players, err := encodePlayers(req.Players)
	if err != nil {
		return hunt.Team{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams SET name = ?, players = ? WHERE id = ?
	`, req.Name, players, id)
	if err != nil {
		return hunt.Team{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hunt.Team{}, ErrNotFound
	}
	return teamByID(ctx, s.db, id)
}

func (s *SQLiteStore) DeleteTeam(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, `DELETE FROM teams WHERE id = ?`, id)
}

// JoinGame books a team onto a game. A team can hold one booking per game.
func (s *SQLiteStore) JoinGame(ctx context.Context, teamID, gameID string) (hunt.Booking, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hunt.Booking{}, err
	}
	defer tx.Rollback()

	if _, err := teamByID(ctx, tx, teamID); err != nil {
		return hunt.Booking{}, err
	}
	ok, err := gameExists(ctx, tx, gameID)
	if err != nil {
		return hunt.Booking{}, err
	}
	if !ok {
		return hunt.Booking{}, ErrNotFound
	}

	var n int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings WHERE team_id = ? AND game_id = ?
	`, teamID, gameID).Scan(&n); err != nil {
		return hunt.Booking{}, err
	}
	if n > 0 {
		return hunt.Booking{}, ErrConflict
	}

	b, err := insertBooking(ctx, tx, AdminBookingRequest{TeamID: teamID, GameID: gameID})
	if err != nil {
		return hunt.Booking{}, err
	}
	return b, tx.Commit()
}

// --- Bookings ---

func (s *SQLiteStore) ListBookings(ctx context.Context) ([]AdminBookingItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`, t.name, g.name,
			i.started_at, i.completed_at, i.current_puzzle_order
		FROM bookings b
		JOIN teams t ON t.id = b.team_id
		JOIN games g ON g.id = b.game_id
		LEFT JOIN game_instances i ON i.booking_id = b.id
		ORDER BY b.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []AdminBookingItem{}
	for rows.Next() {
		var (
			item               AdminBookingItem
			bs                 bookingScan
			started, completed sql.NullString
			order              sql.NullInt64
		)
		dest := append(bs.dest(), &item.TeamName, &item.GameName, &started, &completed, &order)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		item.Booking = bs.booking()
		if started.Valid {
			item.Instance = &InstanceSummary{
				StartedAt:   parseTime(started.String),
				CompletedAt: parseNullTime(completed),
			}
			if order.Valid {
				o := int(order.Int64)
				item.Instance.CurrentPuzzleOrder = &o
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateBooking issues a fresh code for the team and game in req.
func (s *SQLiteStore) CreateBooking(ctx context.Context, req AdminBookingRequest) (hunt.Booking, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hunt.Booking{}, err
	}
	defer tx.Rollback()

	if err := checkBookingRefs(ctx, tx, req); err != nil {
		return hunt.Booking{}, err
	}
	b, err := insertBooking(ctx, tx, req)
	if err != nil {
		return hunt.Booking{}, err
	}
	return b, tx.Commit()
}

func (s *SQLiteStore) UpdateBooking(ctx context.Context, code string, req AdminBookingRequest) (hunt.Booking, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hunt.Booking{}, err
	}
	defer tx.Rollback()

	if err := checkBookingRefs(ctx, tx, req); err != nil {
		return hunt.Booking{}, err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET team_id = ?, game_id = ?, start_time = ?, expires_at = ?, voucher = ?, paid = ?, notes = ?
		WHERE code = ?
	`, req.TeamID, req.GameID, formatNullTime(req.StartTime), formatNullTime(req.ExpiresAt),
		deref(req.Voucher), req.Paid, deref(req.Notes), code)
	if err != nil {
		return hunt.Booking{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hunt.Booking{}, ErrNotFound
	}

	b, err := bookingByCode(ctx, tx, code)
	if err != nil {
		return hunt.Booking{}, err
	}
	return b, tx.Commit()
}

// DeleteBooking removes the booking and, through the foreign key, its
// game instance.
func (s *SQLiteStore) DeleteBooking(ctx context.Context, code string) error {
	return deleteByID(ctx, s.db, `DELETE FROM bookings WHERE code = ?`, code)
}

// CodeExists reports whether a booking already uses code.
func (s *SQLiteStore) CodeExists(ctx context.Context, code string) (bool, error) {
	return codeExists(ctx, s.db, code)
}

func codeExists(ctx context.Context, q queryer, code string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE code = ?`, code).Scan(&n)
	return n > 0, err
}

func checkBookingRefs(ctx context.Context, q queryer, req AdminBookingRequest) error {
	if _, err := teamByID(ctx, q, req.TeamID); err != nil {
		return fmt.Errorf("team %s: %w", req.TeamID, err)
	}
	ok, err := gameExists(ctx, q, req.GameID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("game %s: %w", req.GameID, ErrNotFound)
	}
	return nil
}

func insertBooking(ctx context.Context, q queryer, req AdminBookingRequest) (hunt.Booking, error) {
	code, err := bookingcode.Generate(ctx, func(ctx context.Context, code string) (bool, error) {
		return codeExists(ctx, q, code)
	})
	if err != nil {
		return hunt.Booking{}, err
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO bookings (id, code, team_id, game_id, start_time, expires_at, voucher, paid, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), code, req.TeamID, req.GameID, formatNullTime(req.StartTime), formatNullTime(req.ExpiresAt),
		deref(req.Voucher), req.Paid, deref(req.Notes))
	if err != nil {
		return hunt.Booking{}, fmt.Errorf("inserting booking: %w", err)
	}
	return bookingByCode(ctx, q, code)
}

const bookingColumns = `b.id, b.code, b.team_id, b.game_id, b.start_time, b.expires_at, b.voucher, b.paid, b.notes, b.created_at`

type bookingScan struct {
	b                             hunt.Booking
	start, expires, voucher, note sql.NullString
	created                       string
}

func (bs *bookingScan) dest() []any {
	return []any{&bs.b.ID, &bs.b.Code, &bs.b.TeamID, &bs.b.GameID, &bs.start, &bs.expires, &bs.voucher, &bs.b.Paid, &bs.note, &bs.created}
}

func (bs *bookingScan) booking() hunt.Booking {
	b := bs.b
	b.StartTime = parseNullTime(bs.start)
	b.ExpiresAt = parseNullTime(bs.expires)
	b.Voucher = nullString(bs.voucher)
	b.Notes = nullString(bs.note)
	b.CreatedAt = parseTime(bs.created)
	return b
}

func bookingByCode(ctx context.Context, q queryer, code string) (hunt.Booking, error) {
	var bs bookingScan
	err := q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.code = ?`, code).Scan(bs.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.Booking{}, ErrNotFound
	}
	if err != nil {
		return hunt.Booking{}, err
	}
	return bs.booking(), nil
}

func deleteByID(ctx context.Context, q queryer, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
