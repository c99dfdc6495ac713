// internal/app/features/users/handler.go
package users

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/felix-ong/volunteer-board/internal/app/features/errors"
	"github.com/felix-ong/volunteer-board/internal/app/jobboard"
	userstore "github.com/felix-ong/volunteer-board/internal/app/store/users"
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/auditlog"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/app/system/htmlsanitize"
	"github.com/felix-ong/volunteer-board/internal/app/system/inputval"
	"github.com/felix-ong/volunteer-board/internal/app/system/normalize"
	"github.com/felix-ong/volunteer-board/internal/app/system/ratelimit"
	"github.com/felix-ong/volunteer-board/internal/app/system/timeouts"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const minPasswordLen = 8

// UserStore is satisfied by userstore.Store and memory.UserStore.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// Handler serves /api/user: account creation and token issuance, plus the
// caller's own profile and registered jobs.
type Handler struct {
	Users     UserStore
	Jobs      *jobboard.Service
	Tokens    *auth.TokenService
	Passwords *auth.PasswordService
	Limiter   *ratelimit.AuthLimiter
	Audit     *auditlog.Logger
	Log       *zap.Logger
}

// NewHandler creates a users handler. limiter may be nil to disable
// throttling.
func NewHandler(users UserStore, jobs *jobboard.Service, tokens *auth.TokenService, passwords *auth.PasswordService, limiter *ratelimit.AuthLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:     users,
		Jobs:      jobs,
		Tokens:    tokens,
		Passwords: passwords,
		Limiter:   limiter,
		Audit:     audit,
		Log:       logger,
	}
}

type signupRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	RegNum     string `json:"regNum"`
	ContactNum string `json:"contactNum"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, email string) bool {
	if h.Limiter == nil {
		return true
	}
	ok, reason := h.Limiter.Check(r, email)
	if !ok {
		h.Audit.LoginFailedRateLimit(r.Context(), r, email)
		errors.Write(w, r, h.Log, apperr.RateLimited(reason))
	}
	return ok
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, status int, u models.User) {
	token, err := h.Tokens.Generate(auth.Identity{UserID: u.ID, Role: u.Role, Name: u.Name})
	if err != nil {
		errors.Write(w, r, h.Log, err)
		return
	}
	errors.JSON(w, status, authResponse{User: u, Token: token})
}

// Signup handles POST /api/user/signup. Responds 201 with the new user and
// a token. Admin accounts cannot be created here.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := errors.Decode(w, r, &req); err != nil {
		errors.Write(w, r, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)
	if !h.allow(w, r, email) {
		return
	}

	u, err := h.newUser(req)
	if err != nil {
		errors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Users.Create(ctx, u)
	if err != nil {
		if stderrors.Is(err, userstore.ErrDuplicateEmail) {
			err = apperr.ValidationFailed("email", "a user with this email already exists")
		}
		errors.Write(w, r, h.Log, err)
		return
	}
	h.Audit.Signup(ctx, r, created)
	h.issue(w, r, http.StatusCreated, created)
}

func (h *Handler) newUser(req signupRequest) (models.User, error) {
	name := normalize.Name(htmlsanitize.StripTags(req.Name))
	if name == "" {
		return models.User{}, apperr.ValidationFailed("name", "name is required")
	}
	email := normalize.Email(req.Email)
	if !inputval.IsValidEmail(email) {
		return models.User{}, apperr.ValidationFailed("email", "a valid email is required")
	}
	if len(req.Password) < minPasswordLen {
		return models.User{}, apperr.ValidationFailed("password", "password must be at least 8 characters")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok || role == models.RoleAdmin {
		return models.User{}, apperr.ValidationFailed("role", "role must be student, student group or organization")
	}
	contact := normalize.Phone(req.ContactNum)
	if contact != "" && !normalize.IsPhone(contact) {
		return models.User{}, apperr.ValidationFailed("contactNum", "contactNum must be a phone number")
	}

	hash, err := h.Passwords.Hash(req.Password)
	if err != nil {
		return models.User{}, apperr.ValidationFailed("password", "password is too long")
	}
	return models.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		RegNum:       htmlsanitize.StripTags(req.RegNum),
		ContactNum:   contact,
	}, nil
}

// Login handles POST /api/user/login.
//
//	404 unknown email, 400 wrong password, 429 throttled, 200 { user, token }
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := errors.Decode(w, r, &req); err != nil {
		errors.Write(w, r, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)
	if !h.allow(w, r, email) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if stderrors.Is(err, userstore.ErrNotFound) {
		h.Audit.LoginFailedUserNotFound(ctx, r, email)
		errors.Write(w, r, h.Log, &apperr.AppError{Err: apperr.ErrNotFound, Message: "no account with that email", Field: "email"})
		return
	}
	if err != nil {
		errors.Write(w, r, h.Log, err)
		return
	}

	if err := h.Passwords.Verify(u.PasswordHash, req.Password); err != nil {
		if stderrors.Is(err, auth.ErrInvalidPassword) {
			h.Audit.LoginFailedWrongPassword(ctx, r, u.ID, email)
			err = apperr.ValidationFailed("password", "invalid credentials")
		}
		errors.Write(w, r, h.Log, err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.Audit.LoginSuccess(ctx, r, u.ID, email)
	h.issue(w, r, http.StatusOK, *u)
}

// Me handles GET /api/user/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.CurrentIdentity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.UserID)
	if stderrors.Is(err, userstore.ErrNotFound) {
		err = apperr.NotFound("user", ident.UserID.Hex())
	}
	if err != nil {
		errors.Write(w, r, h.Log, err)
		return
	}
	errors.JSON(w, http.StatusOK, u)
}

// MyJobs handles GET /api/user/me/jobs: the jobs the caller registered for.
func (h *Handler) MyJobs(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.CurrentIdentity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	jobs, err := h.Jobs.ListRegisteredJobs(ctx, ident.UserID)
	if err != nil {
		errors.Write(w, r, h.Log, err)
		return
	}
	for i := range jobs {
		jobs[i] = jobboard.Present(ident, jobs[i])
	}
	errors.JSON(w, http.StatusOK, jobs)
}
