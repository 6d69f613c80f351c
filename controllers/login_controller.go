package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"Postline/auth"
	"Postline/models"
	"Postline/security"
	"Postline/utils/formaterror"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Login godoc
// @Summary      Log in
// @Description  Exchange email and password for a signed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      LoginRequest  true  "Credentials"
// @Success      200  {object}  TokenResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /login [post]
func (server *Server) Login(c *gin.Context) {
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
	errorMessages := user.Validate("login")
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errorMessages})
		return
	}

	userData, err := server.SignIn(user.Email, user.Password)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": formattedError})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "response": userData})
}

// SignIn verifies the credentials and assembles the login payload.
func (server *Server) SignIn(email, password string) (map[string]interface{}, error) {
	userData := make(map[string]interface{})

	user := models.User{}
	err := server.DB.Model(models.User{}).Where("email = ?", email).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("record not found")
		}
		return nil, err
	}
	err = security.VerifyPassword(user.Password, password)
	if err != nil && errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, errors.New("hashedPassword is not the hash of the given password")
	}
	if err != nil {
		return nil, err
	}
	token, err := auth.CreateToken(user.ID)
	if err != nil {
		return nil, err
	}

	userData["token"] = token
	userData["user"] = userToDTO(&user)
	return userData, nil
}
