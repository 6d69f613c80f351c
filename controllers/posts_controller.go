package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"Postline/cache"
	"Postline/models"
	"Postline/utils/fileformat"
	"Postline/utils/formaterror"
	httpctx "Postline/utils/httpctx"

	aws2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
)

func parsePage(value string) int {
	page, err := strconv.Atoi(value)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// CreatePost godoc
// @Summary      Publish a post
// @Description  Create a new post, optionally assigned to a group
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        post  body      PostCreateRequest  true  "Post payload"
// @Success      201   {object}  PostResponseDoc
// @Failure      401   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /posts [post]
// @Security     BearerAuth
func (server *Server) CreatePost(c *gin.Context) {
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

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	post := models.Post{}
	err = json.Unmarshal(body, &post)
	if err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	post.Prepare()
	post.AuthorID = uid

	// An unknown group is a validation failure, not a silent null
	if post.GroupID != nil {
		group := models.Group{}
		if _, err := group.FindGroupByID(server.DB, *post.GroupID); err != nil {
			errList["Invalid_group"] = "Group does not exist"
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"status": http.StatusUnprocessableEntity,
				"error":  errList,
			})
			return
		}
	}

	errorMessages := post.Validate()
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	postCreated, err := post.SavePost(server.DB)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  formattedError,
		})
		return
	}

	server.invalidateFeedCache()

	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": postToDTO(postCreated),
	})
}

// GetPosts godoc
// @Summary      Global feed
// @Description  All posts, newest first, fixed pages of ten
// @Tags         posts
// @Produce      json
// @Param        page  query     int  false  "Page number (default 1)"
// @Success      200   {object}  PostListResponseDoc
// @Router       /posts [get]
func (server *Server) GetPosts(c *gin.Context) {
	page := parsePage(c.DefaultQuery("page", "1"))

	ctx := context.Background()
	cacheKey := fmt.Sprintf("posts:page:%d", page)

	if cached, err := cache.Get(ctx, cacheKey); err == nil && cached != "" {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	post := models.Post{}
	posts, total, page, err := post.FindGlobalFeed(server.DB, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve posts"})
		return
	}

	respBody := gin.H{
		"status":     http.StatusOK,
		"response":   postsToDTOs(posts),
		"pagination": buildPagination(page, models.PostsPerPage, total),
	}

	if jsonBytes, err := json.Marshal(respBody); err == nil {
		_ = cache.Set(ctx, cacheKey, jsonBytes, 30*time.Second)
	}

	c.JSON(http.StatusOK, respBody)
}

// GetPost godoc
// @Summary      Post detail
// @Description  A single post with its comments
// @Tags         posts
// @Produce      json
// @Param        id  path      string  true  "Post ID"
// @Success      200  {object}  PostDetailResponseDoc
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func (server *Server) GetPost(c *gin.Context) {
	errList := map[string]string{}

	post, err := resolvePostByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, errInvalidIdentifier) {
			errList["Invalid_request"] = "Invalid Request"
			c.JSON(http.StatusBadRequest, gin.H{
				"status": http.StatusBadRequest,
				"error":  errList,
			})
			return
		}
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
		"status": http.StatusOK,
		"response": gin.H{
			"post":     postToDTO(post),
			"comments": commentDTOs,
		},
	})
}

// UpdatePost godoc
// @Summary      Edit a post
// @Description  Author-only edit of text and group; other actors get the unchanged post back
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Post ID"
// @Param        post  body      PostUpdateRequest  true  "Updated fields"
// @Success      200   {object}  PostResponseDoc
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /posts/{id} [put]
// @Security     BearerAuth
func (server *Server) UpdatePost(c *gin.Context) {
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

	origPost, err := resolvePostByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		errList["No_post"] = "No Post Found"
		c.JSON(http.StatusNotFound, gin.H{
			"status": http.StatusNotFound,
			"error":  errList,
		})
		return
	}

	// Anyone who is not the author gets the current state back untouched.
	// Mirrors the web flow of bouncing a non-author from the edit form to
	// the read-only view without raising an error.
	if origPost.AuthorID != uid {
		c.JSON(http.StatusOK, gin.H{
			"status":   http.StatusOK,
			"response": postToDTO(origPost),
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

	post := models.Post{}
	err = json.Unmarshal(body, &post)
	if err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	post.Prepare()
	post.ID = origPost.ID
	post.AuthorID = origPost.AuthorID

	if post.GroupID != nil {
		group := models.Group{}
		if _, err := group.FindGroupByID(server.DB, *post.GroupID); err != nil {
			errList["Invalid_group"] = "Group does not exist"
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"status": http.StatusUnprocessableEntity,
				"error":  errList,
			})
			return
		}
	}

	errorMessages := post.Validate()
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	postUpdated, err := post.UpdateAPost(server.DB)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  formattedError,
		})
		return
	}

	server.invalidateFeedCache()

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": postToDTO(postUpdated),
	})
}

// UpdatePostImage allows the author to attach or replace the post's image
func (server *Server) UpdatePostImage(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	post, err := resolvePostByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.AuthorID != uid {
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
	key := "PostImages/" + filePath

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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	updated := models.Post{ImagePath: filePath}
	postUpdated, err := updated.UpdateAPostImage(server.DB, post.ID)
	if err != nil {
		log.Printf("DB update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save image, please try again later"})
		return
	}

	server.invalidateFeedCache()

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": postToDTO(postUpdated),
	})
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Author-only hard delete; the post's comments go with it
// @Tags         posts
// @Produce      json
// @Param        id  path      string  true  "Post ID"
// @Success      200  {object}  SimpleMessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [delete]
// @Security     BearerAuth
func (server *Server) DeletePost(c *gin.Context) {
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

	post, err := resolvePostByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		errList["No_post"] = "No Post Found"
		c.JSON(http.StatusNotFound, gin.H{
			"status": http.StatusNotFound,
			"error":  errList,
		})
		return
	}

	if post.AuthorID != uid && !httpctx.IsAdminRequest(c) {
		errList["Unauthorized"] = "Unauthorized"
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": http.StatusUnauthorized,
			"error":  errList,
		})
		return
	}

	_, err = post.DeleteAPost(server.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
		return
	}

	server.invalidateFeedCache()

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Post deleted",
	})
}

// GetUserPosts godoc
// @Summary      Author feed
// @Description  An author's posts plus their total count and whether the viewer follows them
// @Tags         posts
// @Produce      json
// @Param        username  path      string  true   "Author username"
// @Param        page      query     int     false  "Page number (default 1)"
// @Success      200       {object}  ProfileFeedResponseDoc
// @Failure      404       {object}  ErrorResponse
// @Router       /users/{username}/posts [get]
func (server *Server) GetUserPosts(c *gin.Context) {
	author, err := resolveUserByUsername(server.DB, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status": http.StatusNotFound,
			"error":  map[string]string{"No_user": "No User Found"},
		})
		return
	}

	page := parsePage(c.DefaultQuery("page", "1"))

	post := models.Post{}
	posts, total, page, err := post.FindAuthorFeed(server.DB, author.ID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve posts"})
		return
	}

	postsCount, err := post.CountUserPosts(server.DB, author.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to count posts"})
		return
	}

	following := false
	if viewerID, ok := httpctx.CurrentUserID(c); ok && viewerID != author.ID {
		var followCount int64
		if err := server.DB.Model(&models.Follow{}).
			Where("follower_id = ? AND followed_id = ?", viewerID, author.ID).
			Count(&followCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to check follow state"})
			return
		}
		following = followCount > 0
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"response": gin.H{
			"author":      userToDTO(author),
			"posts":       postsToDTOs(posts),
			"posts_count": postsCount,
			"following":   following,
		},
		"pagination": buildPagination(page, models.PostsPerPage, total),
	})
}

// GetFollowedFeed godoc
// @Summary      Followed-authors feed
// @Description  Posts from the authors the authenticated user follows
// @Tags         posts
// @Produce      json
// @Param        page  query     int  false  "Page number (default 1)"
// @Success      200   {object}  PostListResponseDoc
// @Failure      401   {object}  ErrorResponse
// @Router       /feed [get]
// @Security     BearerAuth
func (server *Server) GetFollowedFeed(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": http.StatusUnauthorized,
			"error":  map[string]string{"Unauthorized": "Unauthorized"},
		})
		return
	}

	page := parsePage(c.DefaultQuery("page", "1"))

	post := models.Post{}
	posts, total, page, err := post.FindFollowedFeed(server.DB, uid, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     http.StatusOK,
		"response":   postsToDTOs(posts),
		"pagination": buildPagination(page, models.PostsPerPage, total),
	})
}
