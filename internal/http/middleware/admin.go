// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RequireAdmin, the guard in front of operator
// endpoints. The gateway authenticates chat users and forwards the caller's
// user id in X-Admin-ID; only the configured admin passes.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HeaderAdminID carries the chat user id of the operator.
const HeaderAdminID = "X-Admin-ID"

// RequireAdmin aborts with 403 forbidden unless X-Admin-ID equals adminID.
// An adminID of 0 disables every admin endpoint.
func RequireAdmin(adminID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(HeaderAdminID), 10, 64)
		if adminID == 0 || err != nil || id != adminID {
			LoggerFrom(c).Warn().
				Bool("security", true).
				Str("path", c.Request.URL.Path).
				Msg("admin access denied")
			abortJSON(c, http.StatusForbidden, "forbidden", "admin only")
			return
		}
		c.Set("userID", strconv.FormatInt(id, 10))
		c.Next()
	}
}
