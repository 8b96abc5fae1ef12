package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

const defaultLeaderboardLimit = 10

type userUseCase interface {
	Register(ctx context.Context, username, email, password string) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
}

type leaderboard interface {
	RecordWin(ctx context.Context, username string) error
	Top(ctx context.Context, limit int) ([]entity.PlayerScore, error)
}

type tokenParser interface {
	ParseToken(token string) (*service.TokenClaims, error)
}

type Handler struct {
	logger *slog.Logger

	users  userUseCase
	scores leaderboard
	auth   tokenParser
}

func NewHandler(logger *slog.Logger, users userUseCase, scores leaderboard, auth tokenParser) *Handler {
	return &Handler{
		logger: logger,
		users:  users,
		scores: scores,
		auth:   auth,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (that *Handler) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Server is running",
	})
}

func (that *Handler) Register(ctx echo.Context) error {
	log := that.logger.With("method", "Register")

	var req registerRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, messageResponse{Message: "invalid request body"})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, messageResponse{Message: "username, email and password are required"})
	}

	user, token, err := that.users.Register(ctx.Request().Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, apperror.ErrUserAlreadyExists) {
		return ctx.JSON(http.StatusConflict, messageResponse{Message: "user already exists"})
	}
	if err != nil {
		log.Error("failed to register user", "error", err)
		return ctx.JSON(http.StatusInternalServerError, messageResponse{Message: "registration failed"})
	}

	return ctx.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

func (that *Handler) Login(ctx echo.Context) error {
	log := that.logger.With("method", "Login")

	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, messageResponse{Message: "invalid request body"})
	}

	if req.Email == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, messageResponse{Message: "email and password are required"})
	}

	user, token, err := that.users.Login(ctx.Request().Context(), req.Email, req.Password)
	if errors.Is(err, apperror.ErrInvalidCredentials) {
		return ctx.JSON(http.StatusUnauthorized, messageResponse{Message: "invalid credentials"})
	}
	if err != nil {
		log.Error("failed to log user in", "error", err)
		return ctx.JSON(http.StatusInternalServerError, messageResponse{Message: "login failed"})
	}

	return ctx.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func (that *Handler) Leaderboard(ctx echo.Context) error {
	log := that.logger.With("method", "Leaderboard")

	limit := defaultLeaderboardLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return ctx.JSON(http.StatusBadRequest, messageResponse{Message: "invalid limit"})
		}
		limit = parsed
	}

	scores, err := that.scores.Top(ctx.Request().Context(), limit)
	if err != nil {
		log.Error("failed to get leaderboard", "error", err)
		return ctx.JSON(http.StatusInternalServerError, messageResponse{Message: "failed to get leaderboard"})
	}

	return ctx.JSON(http.StatusOK, scores)
}

func (that *Handler) ReportScore(ctx echo.Context) error {
	log := that.logger.With("method", "ReportScore")

	username, ok := ctx.Get(usernameContextKey).(string)
	if !ok || username == "" {
		return ctx.JSON(http.StatusUnauthorized, messageResponse{Message: "unauthorized"})
	}

	if err := that.scores.RecordWin(ctx.Request().Context(), username); err != nil {
		log.Error("failed to record win", "username", username, "error", err)
		return ctx.JSON(http.StatusInternalServerError, messageResponse{Message: "failed to record win"})
	}

	return ctx.JSON(http.StatusOK, map[string]bool{"ok": true})
}

const usernameContextKey = "username"

// RequireAuth - verifies the bearer token and stores the caller's
// username in the request context.
func (that *Handler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return ctx.JSON(http.StatusUnauthorized, messageResponse{Message: "missing bearer token"})
		}

		claims, err := that.auth.ParseToken(token)
		if err != nil {
			return ctx.JSON(http.StatusUnauthorized, messageResponse{Message: "invalid token"})
		}

		ctx.Set(usernameContextKey, claims.Username)

		return next(ctx)
	}
}
