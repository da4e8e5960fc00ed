package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

type gameManager interface {
	State() *entity.Game
	MakeTurn(ctx context.Context, cell int) (*entity.Game, error)
	ResetRound(ctx context.Context) *entity.Game
	ResetAll(ctx context.Context) *entity.Game
}

type GameHandler interface {
	GetState(ctx echo.Context) error
	MakeTurn(ctx echo.Context) error
	ResetRound(ctx echo.Context) error
	ResetAll(ctx echo.Context) error
}

type turnRequest struct {
	Cell *int `json:"cell"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type gameHandler struct {
	logger *slog.Logger
	games  gameManager
}

func NewGameHandler(logger *slog.Logger, games gameManager) GameHandler {
	return &gameHandler{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

func (that *gameHandler) GetState(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, that.games.State())
}

func (that *gameHandler) MakeTurn(ctx echo.Context) error {
	log := that.logger.With("method", "MakeTurn")

	var req turnRequest
	if err := ctx.Bind(&req); err != nil {
		log.Debug("failed to bind request", "error", err)
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: apperror.ErrInvalidPayload.Error()})
	}

	if req.Cell == nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "cell is required"})
	}

	game, err := that.games.MakeTurn(ctx.Request().Context(), *req.Cell)
	if errors.Is(err, apperror.ErrInvalidIndex) {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	if err != nil {
		log.Error("failed to make turn", "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}

	return ctx.JSON(http.StatusOK, game)
}

func (that *gameHandler) ResetRound(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, that.games.ResetRound(ctx.Request().Context()))
}

func (that *gameHandler) ResetAll(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, that.games.ResetAll(ctx.Request().Context()))
}
