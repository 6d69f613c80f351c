package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Postline/controllers"
	"Postline/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AuthMiddlewareForTests simulates an authenticated user by setting userID in the context
func AuthMiddlewareForTests(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

// AdminMiddlewareForTests simulates an authenticated admin user
func AdminMiddlewareForTests(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("isAdmin", true)
		c.Next()
	}
}

// newTestServer wires a server against an in-memory SQLite database with the
// full schema migrated.
func newTestServer(t *testing.T) (*controllers.Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	r := gin.Default()
	server := &controllers.Server{}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	server.DB = db

	err = server.DB.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.ResetPassword{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}
	return server, r
}

func createTestUser(t *testing.T, server *controllers.Server, username, email string) *models.User {
	user := models.User{
		Username: username,
		Email:    email,
		Password: "password123",
	}
	user.Prepare()
	saved, err := user.SaveUser(server.DB)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return saved
}

func createTestPost(t *testing.T, server *controllers.Server, authorID uint, text string, groupID *uint) *models.Post {
	post := models.Post{
		Text:    text,
		GroupID: groupID,
	}
	post.Prepare()
	post.AuthorID = authorID
	saved, err := post.SavePost(server.DB)
	if err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return saved
}

func TestCreatePost(t *testing.T) {
	server, r := newTestServer(t)
	user := createTestUser(t, server, "testuser", "testuser@example.com")

	authenticatedRouter := r.Group("/api/v1")
	authenticatedRouter.Use(AuthMiddlewareForTests(user.ID))
	authenticatedRouter.POST("/posts", server.CreatePost)

	mockPost := map[string]interface{}{
		"text": "Hello from the test suite",
	}
	requestBody, _ := json.Marshal(mockPost)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var responseBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	if err != nil {
		t.Fatalf("Error unmarshalling response body: %v", err)
	}

	responsePost := responseBody["response"].(map[string]interface{})
	assert.Equal(t, "Hello from the test suite", responsePost["text"])
	assert.Equal(t, float64(user.ID), responsePost["author_id"])
	assert.NotEmpty(t, responsePost["public_id"])

	author := responsePost["author"].(map[string]interface{})
	assert.Equal(t, "testuser", author["username"])
}

func TestCreatePostUnauthenticated(t *testing.T) {
	server, r := newTestServer(t)
	createTestUser(t, server, "testuser", "testuser@example.com")

	// No auth middleware: the handler must reject and persist nothing
	r.POST("/api/v1/posts", server.CreatePost)

	mockPost := map[string]interface{}{
		"text": "This should never be saved",
	}
	requestBody, _ := json.Marshal(mockPost)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	server.DB.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreatePostUnknownGroup(t *testing.T) {
	server, r := newTestServer(t)
	user := createTestUser(t, server, "testuser", "testuser@example.com")

	authenticatedRouter := r.Group("/api/v1")
	authenticatedRouter.Use(AuthMiddlewareForTests(user.ID))
	authenticatedRouter.POST("/posts", server.CreatePost)

	mockPost := map[string]interface{}{
		"text":     "Post into a group that does not exist",
		"group_id": 999,
	}
	requestBody, _ := json.Marshal(mockPost)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var count int64
	server.DB.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGetPostByID(t *testing.T) {
	server, r := newTestServer(t)
	user := createTestUser(t, server, "testuser", "testuser@example.com")
	post := createTestPost(t, server, user.ID, "A single post", nil)

	r.GET("/api/v1/posts/:id", server.GetPost)

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var responseBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	if err != nil {
		t.Fatalf("Error unmarshalling response body: %v", err)
	}

	response := responseBody["response"].(map[string]interface{})
	responsePost := response["post"].(map[string]interface{})
	assert.Equal(t, "A single post", responsePost["text"])

	comments := response["comments"].([]interface{})
	assert.Len(t, comments, 0)

	// The public uuid must resolve to the same post
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/posts/"+post.PublicID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPostNotFound(t *testing.T) {
	server, r := newTestServer(t)

	r.GET("/api/v1/posts/:id", server.GetPost)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/posts/999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePostByNonAuthor(t *testing.T) {
	server, r := newTestServer(t)
	author := createTestUser(t, server, "author", "author@example.com")
	intruder := createTestUser(t, server, "intruder", "intruder@example.com")
	post := createTestPost(t, server, author.ID, "Original text", nil)

	authenticatedRouter := r.Group("/api/v1")
	authenticatedRouter.Use(AuthMiddlewareForTests(intruder.ID))
	authenticatedRouter.PUT("/posts/:id", server.UpdatePost)

	mockUpdate := map[string]interface{}{
		"text": "Hijacked text",
	}
	requestBody, _ := json.Marshal(mockUpdate)
	req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", post.ID), bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Non-authors are bounced back to the unchanged post, not an error
	assert.Equal(t, http.StatusOK, w.Code)

	var responseBody map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	responsePost := responseBody["response"].(map[string]interface{})
	assert.Equal(t, "Original text", responsePost["text"])

	var stored models.Post
	server.DB.Where("id = ?", post.ID).Take(&stored)
	assert.Equal(t, "Original text", stored.Text)
}

func TestUpdatePostKeepsPubDate(t *testing.T) {
	server, r := newTestServer(t)
	author := createTestUser(t, server, "author", "author@example.com")
	post := createTestPost(t, server, author.ID, "Original text", nil)
	originalPubDate := post.PubDate

	authenticatedRouter := r.Group("/api/v1")
	authenticatedRouter.Use(AuthMiddlewareForTests(author.ID))
	authenticatedRouter.PUT("/posts/:id", server.UpdatePost)

	mockUpdate := map[string]interface{}{
		"text": "Edited text",
	}
	requestBody, _ := json.Marshal(mockUpdate)
	req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", post.ID), bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Post
	server.DB.Where("id = ?", post.ID).Take(&stored)
	assert.Equal(t, "Edited text", stored.Text)
	assert.Equal(t, author.ID, stored.AuthorID)
	// Editing must not move the post in the feed
	assert.WithinDuration(t, originalPubDate, stored.PubDate, time.Second)
}

func TestDeletePost(t *testing.T) {
	server, r := newTestServer(t)
	author := createTestUser(t, server, "author", "author@example.com")
	commenter := createTestUser(t, server, "commenter", "commenter@example.com")
	post := createTestPost(t, server, author.ID, "Doomed post", nil)

	comment := models.Comment{Text: "A comment on the doomed post"}
	comment.Prepare()
	comment.AuthorID = commenter.ID
	comment.PostID = post.ID
	if _, err := comment.SaveComment(server.DB); err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}

	authenticatedRouter := r.Group("/api/v1")
	authenticatedRouter.Use(AuthMiddlewareForTests(author.ID))
	authenticatedRouter.DELETE("/posts/:id", server.DeletePost)

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var postCount, commentCount int64
	server.DB.Model(&models.Post{}).Count(&postCount)
	server.DB.Model(&models.Comment{}).Count(&commentCount)
	assert.Equal(t, int64(0), postCount)
	assert.Equal(t, int64(0), commentCount)
}

func TestDeletePostByNonAuthor(t *testing.T) {
	server, r := newTestServer(t)
	author := createTestUser(t, server, "author", "author@example.com")
	intruder := createTestUser(t, server, "intruder", "intruder@example.com")
	post := createTestPost(t, server, author.ID, "Protected post", nil)

	authenticatedRouter := r.Group("/api/v1")
	authenticatedRouter.Use(AuthMiddlewareForTests(intruder.ID))
	authenticatedRouter.DELETE("/posts/:id", server.DeletePost)

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	server.DB.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPostPagination(t *testing.T) {
	server, r := newTestServer(t)
	user := createTestUser(t, server, "testuser", "testuser@example.com")

	for i := 1; i <= 15; i++ {
		createTestPost(t, server, user.ID, fmt.Sprintf("post number %d", i), nil)
	}

	r.GET("/api/v1/posts", server.GetPosts)

	// First page: exactly ten posts, newest first
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/posts?page=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var responseBody map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	posts := responseBody["response"].([]interface{})
	assert.Len(t, posts, 10)

	first := posts[0].(map[string]interface{})
	assert.Equal(t, "post number 15", first["text"])

	pagination := responseBody["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(15), pagination["total"])
	assert.Equal(t, float64(2), pagination["total_pages"])
	assert.Equal(t, true, pagination["has_next"])
	assert.Equal(t, false, pagination["has_prev"])

	// Second page: the remaining five
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/posts?page=2", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	posts = responseBody["response"].([]interface{})
	assert.Len(t, posts, 5)

	last := posts[len(posts)-1].(map[string]interface{})
	assert.Equal(t, "post number 1", last["text"])

	// An out-of-range page clamps to the last non-empty page
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/posts?page=99", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	posts = responseBody["response"].([]interface{})
	assert.Len(t, posts, 5)
	pagination = responseBody["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])
}
