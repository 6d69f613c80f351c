package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"Postline/models"
	"Postline/utils/formaterror"
	httpctx "Postline/utils/httpctx"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateComment godoc
// @Summary      Comment on a post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Post ID"
// @Param        comment  body      CommentCreateRequest  true  "Comment payload"
// @Success      201      {object}  CommentResponseDoc
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Router       /posts/{id}/comments [post]
// @Security     BearerAuth
func (server *Server) CreateComment(c *gin.Context) {
	errList := map[string]string{}

	post, err := resolvePostByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, errInvalidIdentifier) {
			errList["Invalid_request"] = "Invalid Request"
			c.JSON(http.StatusBadRequest, gin.H{
				"status": http.StatusBadRequest,
				"error":  errList,
			})
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			errList["No_post"] = "No Post Found"
			c.JSON(http.StatusNotFound, gin.H{
				"status": http.StatusNotFound,
				"error":  errList,
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve post"})
		}
		return
	}

	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		errList["Unauthorized"] = "Unauthorized"
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": http.StatusUnauthorized,
			"error":  errList,
		})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	comment := models.Comment{}
	err = json.Unmarshal(body, &comment)
	if err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	comment.Prepare()
	comment.AuthorID = uid
	comment.PostID = post.ID

	errorMessages := comment.Validate()
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	commentCreated, err := comment.SaveComment(server.DB)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  formattedError,
		})
		return
	}

	// Resolve the author for the response payload
	if err := server.DB.Model(commentCreated).Association("Author").Find(&commentCreated.Author); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading comment author"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": commentToDTO(commentCreated),
	})
}

// GetComments godoc
// @Summary      List a post's comments
// @Tags         comments
// @Produce      json
// @Param        id  path      string  true  "Post ID"
// @Success      200  {object}  CommentListResponseDoc
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/comments [get]
func (server *Server) GetComments(c *gin.Context) {
	errList := map[string]string{}

	post, err := resolvePostByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		errList["No_post"] = "No Post Found"
		c.JSON(http.StatusNotFound, gin.H{
			"status": http.StatusNotFound,
			"error":  errList,
		})
		return
	}

	comment := models.Comment{}
	comments, err := comment.GetComments(server.DB, post.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving comments"})
		return
	}

	commentDTOs := make([]CommentDTO, len(*comments))
	for i := range *comments {
		commentDTOs[i] = commentToDTO(&(*comments)[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": commentDTOs,
	})
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Comment author only (or an admin)
// @Tags         comments
// @Produce      json
// @Param        id  path      string  true  "Comment ID"
// @Success      200  {object}  SimpleMessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /comments/{id} [delete]
// @Security     BearerAuth
func (server *Server) DeleteComment(c *gin.Context) {
	errList := map[string]string{}

	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		errList["Unauthorized"] = "Unauthorized"
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": http.StatusUnauthorized,
			"error":  errList,
		})
		return
	}

	cid, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		errList["Invalid_request"] = "Invalid Request"
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  errList,
		})
		return
	}

	comment := models.Comment{}
	err = server.DB.Where("id = ?", uint(cid)).Take(&comment).Error
	if err != nil {
		errList["No_comment"] = "No Comment Found"
		c.JSON(http.StatusNotFound, gin.H{
			"status": http.StatusNotFound,
			"error":  errList,
		})
		return
	}

	if comment.AuthorID != uid && !httpctx.IsAdminRequest(c) {
		errList["Unauthorized"] = "Unauthorized"
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": http.StatusUnauthorized,
			"error":  errList,
		})
		return
	}

	_, err = comment.DeleteAComment(server.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Comment deleted",
	})
}
