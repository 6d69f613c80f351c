package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"Postline/mailer"
	"Postline/models"

	"github.com/gin-gonic/gin"
	"github.com/twinj/uuid"
)

// resetTokenTTL bounds how long a reset token stays usable.
const resetTokenTTL = 2 * time.Hour

// ForgotPassword godoc
// @Summary      Request password reset
// @Description  Email a one-time reset token to the account's address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      ForgotPasswordRequest  true  "Account email"
// @Success      200  {object}  SimpleMessageResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /password/forgot [post]
func (server *Server) ForgotPassword(c *gin.Context) {
	errList := map[string]string{}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}
	user := models.User{}
	if err = json.Unmarshal(body, &user); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}

	user.Prepare()
	errorMessages := user.Validate("forgotpassword")
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errorMessages})
		return
	}

	err = server.DB.Model(models.User{}).Where("email = ?", user.Email).Take(&user).Error
	if err != nil {
		errList["No_email"] = "Sorry, we do not recognize this email"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}

	resetPassword := models.ResetPassword{
		Email: user.Email,
		Token: uuid.NewV4().String(),
	}
	resetPassword.Prepare()

	resetDetails, err := resetPassword.SaveDetails(server.DB)
	if err != nil {
		errList["Cannot_save"] = "Cannot save, please try again later"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": errList})
		return
	}

	response, err := mailer.SendResetPassword(resetDetails.Email, resetDetails.Token)
	if err != nil {
		errList["Cannot_send"] = "Cannot send mail, please try again later"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": errList})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"response": gin.H{
			"message":     "Success, please click on the link provided in your email",
			"mail_status": response.Status,
		},
	})
}

// ResetPassword godoc
// @Summary      Reset password
// @Description  Consume a reset token and set a new password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      ResetPasswordRequest  true  "Token plus new password"
// @Success      200  {object}  SimpleMessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /password/reset [post]
func (server *Server) ResetPassword(c *gin.Context) {
	errList := map[string]string{}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}
	requestBody := map[string]string{}
	if err = json.Unmarshal(body, &requestBody); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}

	if requestBody["email"] == "" || requestBody["token"] == "" {
		errList["Missing_fields"] = "Email and token are required"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}
	if requestBody["new_password"] == "" || requestBody["retype_password"] == "" {
		errList["Empty_passwords"] = "Please ensure both passwords are provided"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}

	resetPassword := models.ResetPassword{}
	resetDetails, err := resetPassword.FindEmailAndToken(server.DB, models.ResetPassword{
		Email: requestBody["email"],
		Token: requestBody["token"],
	})
	if err != nil {
		errList["Invalid_token"] = "Invalid link, please try again"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}
	if time.Since(resetDetails.CreatedAt) > resetTokenTTL {
		_, _ = resetDetails.DeleteDetails(server.DB)
		errList["Expired_token"] = "Link has expired, please request a new one"
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "error": errList})
		return
	}

	if requestBody["new_password"] != requestBody["retype_password"] {
		errList["Password_unequal"] = "Passwords provided do not match"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}
	if len(requestBody["new_password"]) < 6 {
		errList["Invalid_password"] = "Password should be at least 6 characters"
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
		return
	}

	user := models.User{
		Email:    resetDetails.Email,
		Password: requestBody["new_password"],
	}
	if err = user.UpdatePassword(server.DB); err != nil {
		errList["Cannot_save"] = "Cannot save, please try again later"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": errList})
		return
	}

	if _, err = resetDetails.DeleteDetails(server.DB); err != nil {
		errList["Cannot_delete"] = "Cannot delete record, please try again later"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": errList})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "response": "Password updated, please login with your new password"})
}
