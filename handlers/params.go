package handlers

import (
	"strconv"

	"app-registry-cms/middleware"
	"app-registry-cms/services"

	"github.com/gin-gonic/gin"
)

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// options builds the change options for the signed-in user.
func options(c *gin.Context) services.PublishOptions {
	return services.AsUser(middleware.CurrentUser(c))
}
