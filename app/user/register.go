package user

import (
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/internal/service"
	"bitwise74/auth-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Fullname string `form:"fullname" json:"fullname"`
	Email    string `form:"email" json:"email"`
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		badRequest(c, "Invalid request body")
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	in := service.RegisterInput{
		Fullname: data.Fullname,
		Email:    data.Email,
		Username: data.Username,
		Password: data.Password,
	}

	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		code, img, err := validators.ImageValidator(fh, d.Settings.MaxUploadSize)
		if err != nil {
			if code == http.StatusInternalServerError {
				fail(c, err, "Failed to read profile picture")
				return
			}

			respond(c, code, false, "Invalid file content: "+err.Error(), nil)
			return
		}

		in.Image = img
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// No profile picture
	default:
		badRequest(c, "Invalid file content")
		zap.L().Debug("Can't read multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	id, err := d.Credentials.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err, "Failed to register user")
		return
	}

	respond(c, http.StatusCreated, true, "User registered successfully", gin.H{
		"userId": id,
	})
}
