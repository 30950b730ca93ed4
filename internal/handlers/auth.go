package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/mmse-service/internal/config"
	"github.com/SAP-F-2025/mmse-service/internal/i18n"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/services"
	"github.com/SAP-F-2025/mmse-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

var errMissingToken = errors.New("missing bearer token")

// TokenVerifier turns a bearer token into the caller it was issued to.
type TokenVerifier interface {
	Verify(token string) (services.Caller, error)
}

// CasdoorVerifier checks tokens signed by the Casdoor instance in config.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg config.CasdoorConfig) *CasdoorVerifier {
	return &CasdoorVerifier{
		client: casdoorsdk.NewClient(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Certificate,
			cfg.Organization,
			cfg.Application,
		),
	}
}

// Verify parses the token and reads the role from the user tag.
func (v *CasdoorVerifier) Verify(token string) (services.Caller, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return services.Caller{}, fmt.Errorf("failed to parse token: %w", err)
	}

	user := claims.User
	id := user.Id
	if id == "" {
		id = user.Owner + "/" + user.Name
	}
	name := user.DisplayName
	if name == "" {
		name = user.Name
	}

	return services.Caller{
		ID:       id,
		FullName: name,
		Email:    user.Email,
		Role:     models.UserRole(strings.ToLower(strings.TrimSpace(user.Tag))),
	}, nil
}

// AuthMiddleware rejects requests without a valid bearer token. Accepted
// callers are mirrored through users when it is set; a failed sync is logged
// and the request continues.
func AuthMiddleware(verifier TokenVerifier, users services.UserService, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var caller services.Caller
			caller, err = verifier.Verify(token)
			if err == nil && caller.ID != "" {
				if users != nil {
					if syncErr := users.Sync(c.Request.Context(), caller); syncErr != nil {
						logger.Warn("Failed to sync user", "user_id", caller.ID, "error", syncErr)
					}
				}
				setCaller(c, caller)
				c.Next()
				return
			}
		}

		logger.Warn("Rejected request", "path", c.Request.URL.Path, "request_id", utils.GetRequestID(c), "error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Message: i18n.T(c.Request.Context(), "Unauthorized"),
		})
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}
