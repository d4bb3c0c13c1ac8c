package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/donna/internal/common"
	"github.com/dmitrijs2005/donna/internal/dbx"
	"github.com/dmitrijs2005/donna/internal/server/auth"
	"github.com/dmitrijs2005/donna/internal/server/config"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/repositories/repomanager"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token string
	User  *models.User
}

type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates an account. The email and username checks and the insert
// run in one transaction; no token is issued.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if username == "" || email == "" || password == "" {
		return nil, common.Detail(common.ErrorValidation, "Missing required fields")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, common.Detailf(common.ErrorValidation, "Password must be at least %d characters", auth.MinPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var user *models.User

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if err := ensureAbsent(repo.GetByEmail(ctx, email)); err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return common.Detail(common.ErrorConflict, "Email already registered")
			}
			return err
		}
		if err := ensureAbsent(repo.GetByUsername(ctx, username)); err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return common.Detail(common.ErrorConflict, "Username already taken")
			}
			return err
		}

		created, err := repo.Create(ctx, &models.User{UserName: username, Email: email, PasswordHash: hash})
		if err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return common.Detail(common.ErrorConflict, "Username or email already registered")
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ensureAbsent turns a lookup result into nil when nothing was found and
// common.ErrorConflict when something was.
func ensureAbsent(_ *models.User, err error) error {
	switch {
	case err == nil:
		return common.ErrorConflict
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return fmt.Errorf("error looking up user: %w", err)
	}
}

// Login accepts a username or an email. Unknown logins and wrong passwords
// are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	password = strings.TrimSpace(password)

	if login == "" || password == "" {
		return nil, common.Detail(common.ErrorValidation, "Missing credentials")
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, login)
	if errors.Is(err, common.ErrorNotFound) {
		user, err = repo.GetByEmail(ctx, login)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errInvalidCredentials
	}

	token, err := auth.GenerateToken(auth.Identity{
		UserID:   user.ID.String(),
		Username: user.UserName,
		Email:    user.Email,
	}, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

var errInvalidCredentials = common.Detail(common.ErrorUnauthorized, "Invalid username or password")

// Authenticate validates a session token and returns its claims.
func (s *UserService) Authenticate(token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.Detail(common.ErrorUnauthorized, "Unauthorized")
	}
	return claims, nil
}
