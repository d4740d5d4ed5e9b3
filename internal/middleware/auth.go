package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/option"

	"github.com/devlink/backend/internal/models"
)

type contextKey string

const UserIDKey contextKey = "userID"

// LegacyTokenHeader is accepted alongside "Authorization: Bearer".
const LegacyTokenHeader = "x-auth-token"

// AccountIDClaim is the Firebase custom claim holding the account's user id.
const AccountIDClaim = "account_id"

// JWTAuth middleware validates HS256 tokens carrying the user id either as
// "user_id" or as the legacy {"user": {"id": ...}} payload.
func JWTAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := requestToken(w, r)
			if !ok {
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Token is not valid"))
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Token is not valid"))
				return
			}

			userID := userIDFromClaims(claims)
			if userID == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid user ID in token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func userIDFromClaims(claims map[string]interface{}) string {
	if id, ok := claims["user_id"].(string); ok {
		return id
	}
	if user, ok := claims["user"].(map[string]interface{}); ok {
		if id, ok := user["id"].(string); ok {
			return id
		}
	}
	return ""
}

type FirebaseAuthConfig struct {
	ProjectID       string
	CredentialsJSON string
}

// NewFirebaseAuthClient builds the Admin SDK auth client used to verify ID tokens.
func NewFirebaseAuthClient(ctx context.Context, cfg FirebaseAuthConfig) (*fbauth.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, err
	}
	return app.Auth(ctx)
}

// IDTokenVerifier is satisfied by *auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseAuth verifies Firebase ID tokens. The account id comes from the
// account_id custom claim set when the account was linked.
func FirebaseAuth(verifier IDTokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := requestToken(w, r)
			if !ok {
				return
			}

			token, err := verifier.VerifyIDToken(r.Context(), tokenString)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Token is not valid"))
				return
			}

			userID, _ := token.Claims[AccountIDClaim].(string)
			if userID == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Token is not linked to an account"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// requestToken extracts the raw token or writes a 401.
func requestToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid authorization header format"))
			return "", false
		}
		return parts[1], true
	}
	if token := r.Header.Get(LegacyTokenHeader); token != "" {
		return token, true
	}
	writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("No token, authorization denied"))
	return "", false
}

// WithUserID stores the authenticated user id on ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
