package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/puzzlehunt/internal/hunt"
)

// HealthResponse maps each dependency to its status.
type HealthResponse map[string]struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
}

// Path parameters. Operations with a body embed one of these next to the
// request type so the document lists both.
type BookingPath struct {
	Code string `path:"code" example:"ABC234"`
}

type GamePath struct {
	GameID string `path:"gameID"`
}

type PuzzlePath struct {
	GameID   string `path:"gameID"`
	PuzzleID string `path:"puzzleID"`
}

type TeamPath struct {
	TeamID string `path:"teamID"`
}

type AnswerInput struct {
	BookingPath
	AnswerRequest
}

type SkipInput struct {
	BookingPath
	SkipRequest
}

type GameUpdateInput struct {
	GamePath
	AdminGameRequest
}

type PuzzleCreateInput struct {
	GamePath
	AdminPuzzleRequest
}

type PuzzleUpdateInput struct {
	PuzzlePath
	AdminPuzzleRequest
}

type PuzzleMoveInput struct {
	PuzzlePath
	AdminMoveRequest
}

type TeamUpdateInput struct {
	TeamPath
	AdminTeamRequest
}

type JoinInput struct {
	TeamPath
	AdminJoinRequest
}

type BookingUpdateInput struct {
	BookingPath
	AdminBookingRequest
}

func newOpenAPISpec() (*openapi3.Spec, error) {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Puzzle Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Bookings and puzzle progression for team puzzle hunts.")

	var errs []error
	add := func(oc openapi.OperationContext) {
		errs = append(errs, r.AddOperation(oc))
	}

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	add(getHealthz)

	// POST /api/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/login")
	postLogin.SetSummary("Player login")
	postLogin.SetDescription("Starts or resumes the game for a booking code. The game instance is created on first login.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(LoginResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	add(postLogin)

	// GET /api/bookings/{code}
	getBooking, _ := r.NewOperationContext(http.MethodGet, "/api/bookings/{code}")
	getBooking.SetSummary("Get booking")
	getBooking.SetDescription("Returns the booking with its team, game puzzles (without answers) and instance.")
	getBooking.AddReqStructure(BookingPath{})
	getBooking.AddRespStructure(BookingResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	add(getBooking)

	// POST /api/bookings/{code}/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/bookings/{code}/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Checks an answer for the team's current puzzle. Wrong answers return 200 with success=false.")
	postAnswer.AddReqStructure(AnswerInput{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	add(postAnswer)

	// POST /api/bookings/{code}/skip
	postSkip, _ := r.NewOperationContext(http.MethodPost, "/api/bookings/{code}/skip")
	postSkip.SetSummary("Skip to puzzle")
	postSkip.SetDescription("Moves the team to any order between 1 and the last puzzle. Requires admin_session cookie.")
	postSkip.AddReqStructure(SkipInput{})
	postSkip.AddRespStructure(InstanceResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSkip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postSkip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postSkip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(postSkip)

	// POST /api/bookings/{code}/previous
	postPrevious, _ := r.NewOperationContext(http.MethodPost, "/api/bookings/{code}/previous")
	postPrevious.SetSummary("Previous puzzle")
	postPrevious.SetDescription("Moves the team back one puzzle. Requires admin_session cookie.")
	postPrevious.AddReqStructure(BookingPath{})
	postPrevious.AddRespStructure(InstanceResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPrevious.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postPrevious.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postPrevious.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(postPrevious)

	// POST /api/bookings/{code}/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/bookings/{code}/reset")
	postReset.SetSummary("Reset progress")
	postReset.SetDescription("Puts the team back on the first puzzle with nothing solved. Requires admin_session cookie.")
	postReset.AddReqStructure(BookingPath{})
	postReset.AddRespStructure(InstanceResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postReset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postReset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(postReset)

	// GET /api/bookings/{code}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/bookings/{code}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream: a snapshot of the instance, then every progress change for the booking.")
	getEvents.AddReqStructure(BookingPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	add(getEvents)

	// GET /api/bookings/{code}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/bookings/{code}/ws")
	getWS.SetSummary("WebSocket event stream")
	getWS.SetDescription("Upgrades to a WebSocket. The first message is {\"type\":\"snapshot\",\"instance\":...}; the same progress events as the SSE stream follow.")
	getWS.AddReqStructure(BookingPath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	add(getWS)

	// GET /api/bookings/{code}/qr
	getQR, _ := r.NewOperationContext(http.MethodGet, "/api/bookings/{code}/qr")
	getQR.SetSummary("Booking QR code")
	getQR.SetDescription("PNG QR code that opens the login page with the booking code filled in.")
	getQR.AddReqStructure(BookingPath{})
	getQR.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("image/png"))
	getQR.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	add(getQR)

	// POST /api/admin/login
	postAdminLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postAdminLogin.SetSummary("Admin login")
	postAdminLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postAdminLogin.AddReqStructure(AdminLoginRequest{})
	postAdminLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAdminLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(postAdminLogin)

	// POST /api/admin/logout
	postAdminLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postAdminLogout.SetSummary("Admin logout")
	postAdminLogout.SetDescription("Clears admin session and cookie.")
	postAdminLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	add(postAdminLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(getMe)

	// GET /api/admin/games
	listGames, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games")
	listGames.SetSummary("List games")
	listGames.SetDescription("Returns all games with puzzle counts. Requires admin_session cookie.")
	listGames.AddRespStructure([]AdminGameSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	listGames.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(listGames)

	// POST /api/admin/games
	createGame, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games")
	createGame.SetSummary("Create game")
	createGame.SetDescription("Creates a game, optionally with puzzles numbered from 1. Requires admin_session cookie.")
	createGame.AddReqStructure(AdminGameRequest{})
	createGame.AddRespStructure(AdminGameDetail{}, openapi.WithHTTPStatus(http.StatusCreated))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(createGame)

	// GET /api/admin/games/{gameID}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/api/admin/games/{gameID}")
	getGame.SetSummary("Get game")
	getGame.SetDescription("Returns a game with its puzzles and answers. Requires admin_session cookie.")
	getGame.AddReqStructure(GamePath{})
	getGame.AddRespStructure(AdminGameDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(getGame)

	// PUT /api/admin/games/{gameID}
	updateGame, _ := r.NewOperationContext(http.MethodPut, "/api/admin/games/{gameID}")
	updateGame.SetSummary("Update game")
	updateGame.SetDescription("Updates a game's name and description. Requires admin_session cookie.")
	updateGame.AddReqStructure(GameUpdateInput{})
	updateGame.AddRespStructure(AdminGameDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	updateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	updateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(updateGame)

	// DELETE /api/admin/games/{gameID}
	deleteGame, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/games/{gameID}")
	deleteGame.SetSummary("Delete game")
	deleteGame.SetDescription("Deletes a game with its puzzles, bookings and instances. Requires admin_session cookie.")
	deleteGame.AddReqStructure(GamePath{})
	deleteGame.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(deleteGame)

	// POST /api/admin/games/{gameID}/puzzles
	addPuzzle, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/puzzles")
	addPuzzle.SetSummary("Add puzzle")
	addPuzzle.SetDescription("Appends a puzzle after the game's last one. Requires admin_session cookie.")
	addPuzzle.AddReqStructure(PuzzleCreateInput{})
	addPuzzle.AddRespStructure(AdminPuzzle{}, openapi.WithHTTPStatus(http.StatusCreated))
	addPuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	addPuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	addPuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(addPuzzle)

	// PUT /api/admin/games/{gameID}/puzzles/{puzzleID}
	updatePuzzle, _ := r.NewOperationContext(http.MethodPut, "/api/admin/games/{gameID}/puzzles/{puzzleID}")
	updatePuzzle.SetSummary("Update puzzle")
	updatePuzzle.SetDescription("Updates a puzzle's content. Order is changed through the move endpoint. Requires admin_session cookie.")
	updatePuzzle.AddReqStructure(PuzzleUpdateInput{})
	updatePuzzle.AddRespStructure(AdminPuzzle{}, openapi.WithHTTPStatus(http.StatusOK))
	updatePuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updatePuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	updatePuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(updatePuzzle)

	// DELETE /api/admin/games/{gameID}/puzzles/{puzzleID}
	deletePuzzle, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/games/{gameID}/puzzles/{puzzleID}")
	deletePuzzle.SetSummary("Delete puzzle")
	deletePuzzle.SetDescription("Deletes a puzzle. Remaining orders are left as they are. Requires admin_session cookie.")
	deletePuzzle.AddReqStructure(PuzzlePath{})
	deletePuzzle.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deletePuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deletePuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(deletePuzzle)

	// POST /api/admin/games/{gameID}/puzzles/{puzzleID}/move
	movePuzzle, _ := r.NewOperationContext(http.MethodPost, "/api/admin/games/{gameID}/puzzles/{puzzleID}/move")
	movePuzzle.SetSummary("Move puzzle")
	movePuzzle.SetDescription("Swaps a puzzle with its neighbour in one transaction. Requires admin_session cookie.")
	movePuzzle.AddReqStructure(PuzzleMoveInput{})
	movePuzzle.AddRespStructure(AdminGameDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	movePuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	movePuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	movePuzzle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(movePuzzle)

	// GET /api/admin/teams
	listTeams, _ := r.NewOperationContext(http.MethodGet, "/api/admin/teams")
	listTeams.SetSummary("List teams")
	listTeams.SetDescription("Returns all teams with their players. Requires admin_session cookie.")
	listTeams.AddRespStructure([]hunt.Team{}, openapi.WithHTTPStatus(http.StatusOK))
	listTeams.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(listTeams)

	// POST /api/admin/teams
	createTeam, _ := r.NewOperationContext(http.MethodPost, "/api/admin/teams")
	createTeam.SetSummary("Create team")
	createTeam.SetDescription("Creates a team. Requires admin_session cookie.")
	createTeam.AddReqStructure(AdminTeamRequest{})
	createTeam.AddRespStructure(hunt.Team{}, openapi.WithHTTPStatus(http.StatusCreated))
	createTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(createTeam)

	// GET /api/admin/teams/{teamID}
	getTeam, _ := r.NewOperationContext(http.MethodGet, "/api/admin/teams/{teamID}")
	getTeam.SetSummary("Get team")
	getTeam.SetDescription("Returns a team with the games it is booked on. Requires admin_session cookie.")
	getTeam.AddReqStructure(TeamPath{})
	getTeam.AddRespStructure(AdminTeamDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	getTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(getTeam)

	// PUT /api/admin/teams/{teamID}
	updateTeam, _ := r.NewOperationContext(http.MethodPut, "/api/admin/teams/{teamID}")
	updateTeam.SetSummary("Update team")
	updateTeam.SetDescription("Replaces a team's name and players. Requires admin_session cookie.")
	updateTeam.AddReqStructure(TeamUpdateInput{})
	updateTeam.AddRespStructure(hunt.Team{}, openapi.WithHTTPStatus(http.StatusOK))
	updateTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updateTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	updateTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(updateTeam)

	// DELETE /api/admin/teams/{teamID}
	deleteTeam, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/teams/{teamID}")
	deleteTeam.SetSummary("Delete team")
	deleteTeam.SetDescription("Deletes a team with its bookings. Requires admin_session cookie.")
	deleteTeam.AddReqStructure(TeamPath{})
	deleteTeam.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(deleteTeam)

	// POST /api/admin/teams/{teamID}/join
	joinGame, _ := r.NewOperationContext(http.MethodPost, "/api/admin/teams/{teamID}/join")
	joinGame.SetSummary("Join game")
	joinGame.SetDescription("Books the team onto a game with a fresh code. Rejects a second booking for the same game. Requires admin_session cookie.")
	joinGame.AddReqStructure(JoinInput{})
	joinGame.AddRespStructure(hunt.Booking{}, openapi.WithHTTPStatus(http.StatusCreated))
	joinGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	joinGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	joinGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	joinGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(joinGame)

	// GET /api/admin/bookings
	listBookings, _ := r.NewOperationContext(http.MethodGet, "/api/admin/bookings")
	listBookings.SetSummary("List bookings")
	listBookings.SetDescription("Returns all bookings with team, game and progress. Requires admin_session cookie.")
	listBookings.AddRespStructure([]AdminBookingItem{}, openapi.WithHTTPStatus(http.StatusOK))
	listBookings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(listBookings)

	// POST /api/admin/bookings
	createBooking, _ := r.NewOperationContext(http.MethodPost, "/api/admin/bookings")
	createBooking.SetSummary("Create booking")
	createBooking.SetDescription("Creates a booking with a generated code. Requires admin_session cookie.")
	createBooking.AddReqStructure(AdminBookingRequest{})
	createBooking.AddRespStructure(hunt.Booking{}, openapi.WithHTTPStatus(http.StatusCreated))
	createBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	createBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(createBooking)

	// PATCH /api/admin/bookings/{code}
	updateBooking, _ := r.NewOperationContext(http.MethodPatch, "/api/admin/bookings/{code}")
	updateBooking.SetSummary("Update booking")
	updateBooking.SetDescription("Replaces a booking's details. The code never changes. Requires admin_session cookie.")
	updateBooking.AddReqStructure(BookingUpdateInput{})
	updateBooking.AddRespStructure(hunt.Booking{}, openapi.WithHTTPStatus(http.StatusOK))
	updateBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updateBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	updateBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(updateBooking)

	// DELETE /api/admin/bookings/{code}
	deleteBooking, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/bookings/{code}")
	deleteBooking.SetSummary("Delete booking")
	deleteBooking.SetDescription("Deletes a booking and its game instance. Requires admin_session cookie.")
	deleteBooking.AddReqStructure(BookingPath{})
	deleteBooking.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteBooking.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	add(deleteBooking)

	return r.Spec, errors.Join(errs...)
}

func handleOpenAPI(logger *slog.Logger) http.HandlerFunc {
	spec, err := newOpenAPISpec()
	if err != nil {
		logger.Error("building openapi document", "error", err)
	}
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
