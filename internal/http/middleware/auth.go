package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/trit-recommender/internal/http/response"
	"github.com/yungbote/trit-recommender/internal/platform/apierr"
	"github.com/yungbote/trit-recommender/internal/platform/ctxutil"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

const codeUnauthorized = "UNAUTHORIZED"

var (
	errMissingToken = errors.New("invalid token format")
	errExpiredToken = errors.New("token has expired")
	errInvalidToken = errors.New("invalid token")
)

// Claims issued by the main backend: userIdentity is the numeric user id,
// userId the display name.
type Claims struct {
	UserIdentity json.Number `json:"userIdentity"`
	UserName     string      `json:"userId"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), secret: []byte(secret)}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c.GetHeader("Authorization"))
		if tokenString == "" {
			response.Abort(c, apierr.Unauthorized(codeUnauthorized, errMissingToken))
			return
		}
		ctx, err := am.contextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.Abort(c, apierr.Unauthorized(codeUnauthorized, err))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) contextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, errExpiredToken
		}
		return ctx, errInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return ctx, errInvalidToken
	}
	userID, err := parseUserIdentity(claims.UserIdentity)
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: userID, Name: claims.UserName}), nil
}

func parseUserIdentity(n json.Number) (int64, error) {
	raw := strings.TrimSpace(string(n))
	if raw == "" {
		return 0, errors.New("missing userIdentity")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad userIdentity %q", raw)
	}
	return id, nil
}

func extractBearer(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireUser reads the caller set by RequireAuth.
func RequireUser(c *gin.Context) (*ctxutil.RequestData, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == 0 {
		response.Abort(c, apierr.New(http.StatusForbidden, "FORBIDDEN", errors.New("forbidden")))
		return nil, false
	}
	return rd, true
}
