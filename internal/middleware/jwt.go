package middleware

import (
	"context"
	"net/http"
	"strings"

	"docvault/internal/logger"
	"docvault/internal/reqctx"
	"docvault/internal/utils"
	helpers "docvault/internal/utils/helpres"

	"go.uber.org/zap"
)

// JWTAuth отклоняет запрос до хендлера, если Bearer-токен отсутствует,
// подделан или просрочен. Идентичность из токена кладётся в контекст.
func JWTAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			authHeader := r.Header.Get("Authorization")

			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует access token")
				helpers.Error(w, http.StatusUnauthorized, "Отсутствует access token")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := utils.ParseToken(jwtSecret, tokenString)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("JWTAuth: неверный или просроченный токен", zap.Error(err))
				helpers.Error(w, http.StatusUnauthorized, "Неверный или просроченный токен")
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextRole, claims.Role)
			ctx = reqctx.WithUserID(ctx, claims.UserID)

			logger.WithCtx(ctx).Debug("JWTAuth: токен валиден",
				zap.Int("user_id", claims.UserID), zap.String("role", claims.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
