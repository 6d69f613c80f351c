package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"Postline/models"
	"Postline/utils/formaterror"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateGroup godoc
// @Summary      Create a group
// @Description  Create a new community (admin only)
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        group  body      GroupCreateRequest  true  "Group payload"
// @Success      201    {object}  GroupResponseDoc
// @Failure      403    {object}  ErrorResponse
// @Failure      422    {object}  ErrorResponse
// @Router       /groups [post]
// @Security     BearerAuth
func (server *Server) CreateGroup(c *gin.Context) {
	errList := map[string]string{}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	group := models.Group{}
	err = json.Unmarshal(body, &group)
	if err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	group.Prepare()
	errorMessages := group.Validate()
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	groupCreated, err := group.SaveGroup(server.DB)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  formattedError,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": groupToDTO(groupCreated),
	})
}

// GetGroups godoc
// @Summary      List groups
// @Tags         groups
// @Produce      json
// @Success      200  {object}  GroupListResponseDoc
// @Router       /groups [get]
func (server *Server) GetGroups(c *gin.Context) {
	group := models.Group{}

	groups, err := group.FindAllGroups(server.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No groups found"})
		return
	}

	groupDTOs := make([]GroupDTO, len(*groups))
	for i := range *groups {
		groupDTOs[i] = groupToDTO(&(*groups)[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": groupDTOs,
	})
}

// GetGroup godoc
// @Summary      Group detail
// @Tags         groups
// @Produce      json
// @Param        slug  path      string  true  "Group slug"
// @Success      200   {object}  GroupResponseDoc
// @Failure      404   {object}  ErrorResponse
// @Router       /groups/{slug} [get]
func (server *Server) GetGroup(c *gin.Context) {
	group, err := resolveGroupBySlug(server.DB, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status": http.StatusNotFound,
			"error":  map[string]string{"No_group": "No Group Found"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": groupToDTO(group),
	})
}

// GetGroupPosts godoc
// @Summary      Group feed
// @Description  Posts published into a group, newest first, fixed pages of ten
// @Tags         groups
// @Produce      json
// @Param        slug  path      string  true   "Group slug"
// @Param        page  query     int     false  "Page number (default 1)"
// @Success      200   {object}  GroupFeedResponseDoc
// @Failure      404   {object}  ErrorResponse
// @Router       /groups/{slug}/posts [get]
func (server *Server) GetGroupPosts(c *gin.Context) {
	group, err := resolveGroupBySlug(server.DB, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status": http.StatusNotFound,
			"error":  map[string]string{"No_group": "No Group Found"},
		})
		return
	}

	page := parsePage(c.DefaultQuery("page", "1"))

	post := models.Post{}
	posts, total, page, err := post.FindGroupFeed(server.DB, group.ID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"response": gin.H{
			"group": groupToDTO(group),
			"posts": postsToDTOs(posts),
		},
		"pagination": buildPagination(page, models.PostsPerPage, total),
	})
}

// DeleteGroup godoc
// @Summary      Delete a group
// @Description  Remove a group (admin only); its posts survive without a group
// @Tags         groups
// @Produce      json
// @Param        slug  path      string  true  "Group slug"
// @Success      200   {object}  SimpleMessageResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /groups/{slug} [delete]
// @Security     BearerAuth
func (server *Server) DeleteGroup(c *gin.Context) {
	group, err := resolveGroupBySlug(server.DB, c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, errInvalidIdentifier) {
			c.JSON(http.StatusNotFound, gin.H{
				"status": http.StatusNotFound,
				"error":  map[string]string{"No_group": "No Group Found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve group"})
		return
	}

	_, err = group.DeleteAGroup(server.DB, group.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
		return
	}

	server.invalidateFeedCache()

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Group deleted",
	})
}
