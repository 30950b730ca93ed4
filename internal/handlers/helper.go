package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/mmse-service/internal/i18n"
	"github.com/SAP-F-2025/mmse-service/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	callerKey = "caller"
	userIDKey = "user_id"
	roleKey   = "user_role"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := c.Param(param)
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// setCaller stores the authenticated caller for the handlers downstream.
func setCaller(c *gin.Context, caller services.Caller) {
	c.Set(callerKey, caller)
	c.Set(userIDKey, caller.ID)
	c.Set(roleKey, string(caller.Role))
}

// getCaller answers 401 and returns false when no caller was authenticated.
func getCaller(c *gin.Context) (services.Caller, bool) {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(services.Caller); ok && caller.ID != "" {
			return caller, true
		}
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Message: i18n.T(c.Request.Context(), "Unauthorized"),
	})
	return services.Caller{}, false
}
