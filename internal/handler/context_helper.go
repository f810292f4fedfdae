package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/givegoa/givegoa-api/internal/middleware"
	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
	"github.com/givegoa/givegoa-api/pkg/response"
)

// currentUser returns the caller or writes 401 and reports false.
func currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.User{}, false
	}
	return user, true
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
