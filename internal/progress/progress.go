// Package progress exposes the code-addressed operations players and
// administrators use to move a team through a game: login, answer, skip,
// previous and reset.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/playperu/puzzlehunt/internal/bookingcode"
	"github.com/playperu/puzzlehunt/internal/hunt"
)

var ErrAnswerRequired = errors.New("answer is required")

// Store reads and updates the booking aggregate behind a code.
//
// WithBooking loads the aggregate and passes it to fn inside one
// transaction. When fn returns write=true the instance is inserted (empty
// ID) or updated before commit. Either way the aggregate as it stood at the
// end of fn is returned.
type Store interface {
	Booking(ctx context.Context, code string) (hunt.Aggregate, error)
	WithBooking(ctx context.Context, code string, fn func(*hunt.Aggregate) (write bool, err error)) (hunt.Aggregate, error)
}

// Publisher receives an event after every committed transition.
type Publisher interface {
	Publish(code string, ev Event)
}

type Event struct {
	Type               string `json:"type"`
	CurrentPuzzleOrder *int   `json:"currentPuzzleOrder"`
	PuzzleID           string `json:"puzzleId,omitempty"`
	Completed          bool   `json:"completed,omitempty"`
}

const (
	EventLogin     = "login"
	EventSolved    = "solved"
	EventCompleted = "completed"
	EventSkipped   = "skipped"
	EventPrevious  = "previous"
	EventReset     = "reset"
)

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPreviousMode(m hunt.PreviousMode) Option {
	return func(s *Service) { s.previousMode = m }
}

// WithStrictCodes makes entry points reject codes containing characters
// outside the generation alphabet.
func WithStrictCodes(strict bool) Option {
	return func(s *Service) { s.strictCodes = strict }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

type Service struct {
	store        Store
	now          func() time.Time
	previousMode hunt.PreviousMode
	strictCodes  bool
	events       Publisher
	logger       *slog.Logger
	tracer       trace.Tracer
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		now:          time.Now,
		previousMode: hunt.PreviousDecrement,
		events:       nopPublisher{},
		logger:       slog.Default(),
		tracer:       otel.Tracer("github.com/playperu/puzzlehunt/internal/progress"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, Event) {}

// canonical re-checks the code even when the HTTP layer already has.
func (s *Service) canonical(code string) (string, error) {
	return bookingcode.Canonical(code, s.strictCodes)
}

// Canonical normalises a booking code the way every operation does, without
// touching the store. Feeds key subscriptions by it.
func (s *Service) Canonical(code string) (string, error) {
	return s.canonical(code)
}

func (s *Service) start(ctx context.Context, op, code string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "progress."+op, trace.WithAttributes(
		attribute.String("booking.code", code),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// LoginOrResume returns the aggregate for code, creating the game instance
// the first time a team logs in. An expired booking never gets an instance.
func (s *Service) LoginOrResume(ctx context.Context, code string) (agg hunt.Aggregate, err error) {
	code, err = s.canonical(code)
	if err != nil {
		return hunt.Aggregate{}, err
	}
	ctx, span := s.start(ctx, "login", code)
	defer func() { finish(span, err) }()

	now := s.now()
	created := false
	agg, err = s.store.WithBooking(ctx, code, func(a *hunt.Aggregate) (bool, error) {
		if a.Booking.Expired(now) {
			return false, hunt.ErrBookingExpired
		}
		if a.Instance != nil {
			return false, nil
		}
		gi := hunt.NewInstance(a.Booking, now)
		a.Instance = &gi
		created = true
		return true, nil
	})
	if err != nil {
		return hunt.Aggregate{}, fmt.Errorf("login %s: %w", code, err)
	}

	if created {
		s.logger.Info("game instance created", "code", code, "instance_id", agg.Instance.ID)
		s.events.Publish(code, Event{Type: EventLogin, CurrentPuzzleOrder: agg.Instance.CurrentPuzzleOrder})
	}
	return agg, nil
}

// Booking returns the current aggregate for code without changing it.
func (s *Service) Booking(ctx context.Context, code string) (hunt.Aggregate, error) {
	code, err := s.canonical(code)
	if err != nil {
		return hunt.Aggregate{}, err
	}
	agg, err := s.store.Booking(ctx, code)
	if err != nil {
		return hunt.Aggregate{}, fmt.Errorf("booking %s: %w", code, err)
	}
	return agg, nil
}

type SubmitRequest struct {
	PuzzleID string
	Answer   *string
	Restore  bool
}

type AnswerResult struct {
	Success    bool
	Message    string
	NextPuzzle *hunt.Puzzle
	Instance   *hunt.GameInstance
}

const (
	msgRestored  = "Puzzle state restored"
	msgCorrect   = "Correct! Moving to next puzzle..."
	msgCompleted = "Congratulations! You've completed all puzzles!"
	msgIncorrect = "Incorrect answer, try again!"
)

// SubmitAnswer checks an answer for the team's current puzzle. A restore
// request only confirms the puzzle exists. A wrong answer is reported in
// the result, not as an error.
func (s *Service) SubmitAnswer(ctx context.Context, code string, req SubmitRequest) (res AnswerResult, err error) {
	code, err = s.canonical(code)
	if err != nil {
		return AnswerResult{}, err
	}
	ctx, span := s.start(ctx, "answer", code)
	span.SetAttributes(attribute.String("puzzle.id", req.PuzzleID))
	defer func() { finish(span, err) }()

	now := s.now()
	var out hunt.Outcome
	agg, err := s.store.WithBooking(ctx, code, func(a *hunt.Aggregate) (bool, error) {
		if _, ok := a.Game.Puzzles.Find(req.PuzzleID); !ok {
			return false, hunt.ErrPuzzleNotFound
		}
		if req.Restore {
			return false, nil
		}
		if a.Instance == nil {
			return false, hunt.ErrOutOfTurn
		}
		if req.Answer == nil {
			return false, ErrAnswerRequired
		}
		var err error
		out, err = a.Instance.Submit(a.Game.Puzzles, req.PuzzleID, *req.Answer, now)
		if err != nil {
			return false, err
		}
		return out.Correct, nil
	})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("answer %s: %w", code, err)
	}

	if req.Restore {
		return AnswerResult{Success: true, Message: msgRestored, Instance: agg.Instance}, nil
	}
	if !out.Correct {
		return AnswerResult{Success: false, Message: msgIncorrect, Instance: agg.Instance}, nil
	}

	s.logger.Info("puzzle solved", "code", code, "puzzle_id", req.PuzzleID, "completed", out.Completed)
	s.events.Publish(code, Event{Type: EventSolved, PuzzleID: req.PuzzleID, CurrentPuzzleOrder: agg.Instance.CurrentPuzzleOrder})
	if out.Completed {
		s.events.Publish(code, Event{Type: EventCompleted, Completed: true})
		return AnswerResult{Success: true, Message: msgCompleted, Instance: agg.Instance}, nil
	}
	return AnswerResult{Success: true, Message: msgCorrect, NextPuzzle: out.Next, Instance: agg.Instance}, nil
}

// Skip moves the team to order without touching solved bookkeeping.
func (s *Service) Skip(ctx context.Context, code string, order int) (hunt.GameInstance, error) {
	return s.override(ctx, "skip", code, EventSkipped, func(a *hunt.Aggregate) error {
		return a.Instance.Skip(a.Game.Puzzles, order)
	})
}

// Previous moves the team back one step according to the configured mode.
func (s *Service) Previous(ctx context.Context, code string) (hunt.GameInstance, error) {
	return s.override(ctx, "previous", code, EventPrevious, func(a *hunt.Aggregate) error {
		return a.Instance.Previous(a.Game.Puzzles, s.previousMode)
	})
}

// Reset starts the team over from order 1.
func (s *Service) Reset(ctx context.Context, code string) (hunt.GameInstance, error) {
	return s.override(ctx, "reset", code, EventReset, func(a *hunt.Aggregate) error {
		a.Instance.Reset()
		return nil
	})
}

func (s *Service) override(ctx context.Context, op, code, event string, apply func(*hunt.Aggregate) error) (gi hunt.GameInstance, err error) {
	code, err = s.canonical(code)
	if err != nil {
		return hunt.GameInstance{}, err
	}
	ctx, span := s.start(ctx, op, code)
	defer func() { finish(span, err) }()

	agg, err := s.store.WithBooking(ctx, code, func(a *hunt.Aggregate) (bool, error) {
		if a.Instance == nil {
			return false, hunt.ErrNoInstanceFound
		}
		if err := apply(a); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return hunt.GameInstance{}, fmt.Errorf("%s %s: %w", op, code, err)
	}

	s.logger.Info("progress override", "op", op, "code", code, "order", orderAttr(agg.Instance.CurrentPuzzleOrder))
	s.events.Publish(code, Event{Type: event, CurrentPuzzleOrder: agg.Instance.CurrentPuzzleOrder})
	return *agg.Instance, nil
}

func orderAttr(o *int) any {
	if o == nil {
		return nil
	}
	return *o
}
