// Package httpapi is the JSON/HTTP surface of the server: routing,
// middleware and handlers. Handlers translate requests into service calls
// and service errors into status codes; they hold no state of their own.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/dmitrijs2005/donna/internal/logging"
	"github.com/dmitrijs2005/donna/internal/server/auth"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/ratelimit"
	"github.com/dmitrijs2005/donna/internal/server/services"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, login, password string) (*services.LoginResult, error)
	Authenticate(token string) (*auth.Claims, error)
}

type TaskService interface {
	List(ctx context.Context, owner models.UserID) ([]*models.Task, error)
	Create(ctx context.Context, owner models.UserID, in services.TaskInput) (*models.Task, error)
	Update(ctx context.Context, owner models.UserID, id uuid.UUID, in services.TaskInput) error
	Delete(ctx context.Context, owner models.UserID, id uuid.UUID) error
}

type EventService interface {
	List(ctx context.Context, owner models.UserID) ([]*models.CalendarEvent, error)
	Create(ctx context.Context, owner models.UserID, in services.EventInput) (*models.CalendarEvent, error)
	Update(ctx context.Context, owner models.UserID, id uuid.UUID, in services.EventInput) error
	Delete(ctx context.Context, owner models.UserID, id uuid.UUID) error
}

type ChatService interface {
	Send(ctx context.Context, owner models.UserID, message string) (*services.ChatReply, error)
	History(ctx context.Context, owner models.UserID) ([]models.Turn, error)
}

// Deps are the collaborators of the HTTP layer. Limiter may be nil, which
// disables chat rate limiting.
type Deps struct {
	Users       UserService
	Tasks       TaskService
	Events      EventService
	Chat        ChatService
	Limiter     ratelimit.Limiter
	Logger      logging.Logger
	CORSOrigins []string
}

type Server struct {
	users       UserService
	tasks       TaskService
	events      EventService
	chat        ChatService
	limiter     ratelimit.Limiter
	logger      logging.Logger
	validate    *validator.Validate
	corsOrigins []string
	now         func() time.Time
}

func NewServer(d Deps) *Server {
	return &Server{
		users:       d.Users,
		tasks:       d.Tasks,
		events:      d.Events,
		chat:        d.Chat,
		limiter:     d.Limiter,
		logger:      d.Logger.With("module", "http"),
		validate:    newValidator(),
		corsOrigins: d.CORSOrigins,
		now:         time.Now,
	}
}

// NewHTTPServer wraps the router in an *http.Server with conservative
// timeouts. WriteTimeout leaves room for a slow model call.
func NewHTTPServer(addr string, h http.Handler, modelTimeout time.Duration, errorLog *log.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ErrorLog:          errorLog,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      modelTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
