package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"Postline/auth"
	"Postline/models"
	"Postline/security"
	"Postline/utils/fileformat"
	"Postline/utils/formaterror"
	httpctx "Postline/utils/httpctx"

	aws2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateUser godoc
// @Summary      Register
// @Description  Create a new account and return a signed token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      UserCreateRequest  true  "Registration payload"
// @Success      201   {object}  TokenResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /users [post]
func (server *Server) CreateUser(c *gin.Context) {
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
	errorMessages := user.Validate("")
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errorMessages})
		return
	}

	userCreated, err := user.SaveUser(server.DB)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": formattedError})
		return
	}

	token, err := auth.CreateToken(userCreated.ID)
	if err != nil {
		errList["Token_error"] = "Could not issue token"
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": errList})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": http.StatusCreated,
		"response": gin.H{
			"token": token,
			"user":  userToDTO(userCreated),
		},
	})
}

// GetUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  UserListResponseDoc
// @Router       /users [get]
func (server *Server) GetUsers(c *gin.Context) {
	user := models.User{}
	users, err := user.FindAllUsers(server.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": "Error fetching users"})
		return
	}

	dtos := make([]UserDTO, len(*users))
	for i := range *users {
		dtos[i] = userToDTO(&(*users)[i])
	}
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "response": dtos})
}

// GetUser godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200  {object}  UserResponseDoc
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{username} [get]
func (server *Server) GetUser(c *gin.Context) {
	user, err := resolveUserByUsername(server.DB, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "response": userToDTO(user)})
}

// UpdateUser godoc
// @Summary      Update account
// @Description  Update email and/or password of the authenticated user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        username  path  string             true  "Username"
// @Param        user      body  UserUpdateRequest  true  "Fields to change"
// @Success      200  {object}  UserResponseDoc
// @Failure      401  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /users/{username} [put]
// @Security     BearerAuth
func (server *Server) UpdateUser(c *gin.Context) {
	errList := map[string]string{}

	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "error": "Unauthorized"})
		return
	}
	target, err := resolveUserByUsername(server.DB, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "error": "User not found"})
		return
	}
	if target.ID != uid {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "error": "Unauthorized"})
		return
	}

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

	// A password change requires the current one to be replayed
	newPassword := requestBody["new_password"]
	if newPassword != "" {
		if len(newPassword) < 6 {
			errList["Invalid_password"] = "Password should be at least 6 characters"
			c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
			return
		}
		if requestBody["current_password"] == "" {
			errList["Empty_current"] = "Please provide current password"
			c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
			return
		}
		if err = security.VerifyPassword(target.Password, requestBody["current_password"]); err != nil {
			errList["Password_mismatch"] = "The password is incorrect"
			c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errList})
			return
		}
	}

	user := models.User{
		Email:    requestBody["email"],
		Password: newPassword,
	}
	if user.Email == "" {
		user.Email = target.Email
	}
	user.Prepare()
	errorMessages := user.Validate("update")
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": http.StatusUnprocessableEntity, "error": errorMessages})
		return
	}

	updatedUser, err := user.UpdateAUser(server.DB, uid)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": formattedError})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "response": userToDTO(updatedUser)})
}

// UpdateAvatar godoc
// @Summary      Upload avatar
// @Description  Replace the authenticated user's profile picture
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Param        file      formData  file    true  "Image file (<2MB)"
// @Success      200  {object}  UserResponseDoc
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/{username}/avatar [put]
// @Security     BearerAuth
func (server *Server) UpdateAvatar(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	target, err := resolveUserByUsername(server.DB, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if target.ID != uid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open file"})
		return
	}
	defer f.Close()

	size := file.Size
	if size > 2_000_000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (<2MB)"})
		return
	}

	buf := make([]byte, size)
	if _, err := f.Read(buf); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}
	fileType := http.DetectContentType(buf)
	if !strings.HasPrefix(fileType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not an image"})
		return
	}

	filePath := fileformat.UniqueFormat(file.Filename)
	key := "UserProfilePics/" + filePath

	rawBucket := os.Getenv("S3_BUCKET")
	bucketName := strings.SplitN(rawBucket, "/", 2)[0]
	if bucketName == "" {
		log.Printf("S3_BUCKET env var is empty or invalid: '%s'", rawBucket)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
		return
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	cfg, err := config.LoadDefaultConfig(
		context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		log.Printf("AWS config load error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AWS configuration error"})
		return
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	_, err = s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:        aws2.String(bucketName),
		Key:           aws2.String(key),
		Body:          bytes.NewReader(buf),
		ContentLength: aws2.Int64(size),
		ContentType:   aws2.String(fileType),
	})
	if err != nil {
		log.Printf("S3 upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload avatar"})
		return
	}

	user := models.User{AvatarPath: filePath}
	updatedUser, err := user.UpdateAUserAvatar(server.DB, uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save avatar"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "response": userToDTO(updatedUser)})
}

// DeleteUser godoc
// @Summary      Delete account
// @Description  Delete a user together with their posts, comments on those posts, own comments and follow edges
// @Tags         users
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200  {object}  SimpleMessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{username} [delete]
// @Security     BearerAuth
func (server *Server) DeleteUser(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "error": "Unauthorized"})
		return
	}
	target, err := resolveUserByUsername(server.DB, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "error": "User not found"})
		return
	}
	if target.ID != uid && !httpctx.IsAdminRequest(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "error": "Unauthorized"})
		return
	}

	err = server.DB.Transaction(func(tx *gorm.DB) error {
		post := models.Post{}
		if _, err := post.DeleteUserPosts(tx, target.ID); err != nil {
			return err
		}
		comment := models.Comment{}
		if _, err := comment.DeleteUserComments(tx, target.ID); err != nil {
			return err
		}
		if err := removeUserFollowEdges(tx, target.ID); err != nil {
			return err
		}
		user := models.User{}
		if _, err := user.DeleteAUser(tx, target.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("user delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": "Error deleting user"})
		return
	}

	server.invalidateFeedCache()
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "response": "User deleted"})
}
