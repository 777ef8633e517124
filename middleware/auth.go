package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"potluck/apperr"
	"potluck/models"
	"potluck/utils"
)

// TokenVerifier turns a bearer token into a session.
type TokenVerifier interface {
	Verify(token string) (*models.Session, error)
}

type Authenticator struct {
	tokens TokenVerifier
	logger *slog.Logger
}

func NewAuthenticator(tokens TokenVerifier, logger *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, logger: logger}
}

// Authenticate requires "Authorization: Bearer <token>" and stores the
// resulting session in the request context. Anything else is a 401.
func (a *Authenticator) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token, ok := bearerToken(r)
		if !ok {
			utils.RespondWithAppError(w, a.logger, apperr.New(apperr.Unauthenticated, "missing or malformed authorization header"))
			return
		}
		session, err := a.tokens.Verify(token)
		if err != nil {
			a.logger.DebugContext(r.Context(), "token rejected", "error", err)
			utils.RespondWithAppError(w, a.logger, err)
			return
		}
		next(w, r.WithContext(utils.WithSession(r.Context(), session)), ps)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
