package handle

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/xpkg/logger"
)

const accessTokenCookie = "accessToken"

// Claims carried by access tokens. The subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionHandler turns a verified access token into a core.Session on the
// request context. Tokens are issued elsewhere; only verification happens here.
type SessionHandler struct {
	secret []byte
	mylog  logger.Logger
}

func NewSessionHandler(secret string, mylog logger.Logger) *SessionHandler {
	return &SessionHandler{secret: []byte(secret), mylog: mylog}
}

func (sh *SessionHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFrom(r)
		if token == "" {
			jsonError(w, http.StatusUnauthorized, core.ErrUnauthorized)
			return
		}

		sess, err := sh.verify(token)
		if err != nil {
			sh.mylog.Action("token_rejected").Debug("Rejected access token", "error", err.Error())
			jsonError(w, http.StatusUnauthorized, core.ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(core.WithSession(r.Context(), sess)))
	})
}

// RequireAdmin must run after Authenticate.
func (sh *SessionHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := core.SessionFrom(r.Context())
		if !ok {
			jsonError(w, http.StatusUnauthorized, core.ErrUnauthorized)
			return
		}
		if !sess.IsAdmin() {
			jsonError(w, http.StatusForbidden, core.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (sh *SessionHandler) verify(token string) (core.Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return sh.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return core.Session{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return core.Session{}, fmt.Errorf("token has no subject")
	}

	role := core.Role(claims.Role)
	switch role {
	case core.RoleAdmin, core.RoleUser:
	case "":
		role = core.RoleUser
	default:
		return core.Session{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	return core.Session{UserID: claims.Subject, Role: role}, nil
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(accessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
