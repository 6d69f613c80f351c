package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"Postline/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateComment(t *testing.T) {
	server, r := newTestServer(t)
	author := createTestUser(t, server, "author", "author@example.com")
	commenter := createTestUser(t, server, "commenter", "commenter@example.com")
	post := createTestPost(t, server, author.ID, "A commentable post", nil)

	authenticatedRouter := r.Group("/api/v1")
	authenticatedRouter.Use(AuthMiddlewareForTests(commenter.ID))
	authenticatedRouter.POST("/posts/:id/comments", server.CreateComment)

	mockComment := map[string]string{
		"text": "First!",
	}
	requestBody, _ := json.Marshal(mockComment)
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var responseBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	if err != nil {
		t.Fatalf("Error unmarshalling response body: %v", err)
	}

	responseComment := responseBody["response"].(map[string]interface{})
	assert.Equal(t, "First!", responseComment["text"])
	assert.Equal(t, "commenter", responseComment["username"])
	assert.Equal(t, float64(commenter.ID), responseComment["author_id"])
}

func TestCreateCommentUnauthenticated(t *testing.T) {
	server, r := newTestServer(t)
	author := createTestUser(t, server, "author", "author@example.com")
	post := createTestPost(t, server, author.ID, "A commentable post", nil)

	// No auth middleware: nothing may be persisted
	r.POST("/api/v1/posts/:id/comments", server.CreateComment)

	mockComment := map[string]string{
		"text": "Anonymous noise",
	}
	requestBody, _ := json.Marshal(mockComment)
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	server.DB.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	server, r := newTestServer(t)
	commenter := createTestUser(t, server, "commenter", "commenter@example.com")

	authenticatedRouter := r.Group("/api/v1")
	authenticatedRouter.Use(AuthMiddlewareForTests(commenter.ID))
	authenticatedRouter.POST("/posts/:id/comments", server.CreateComment)

	mockComment := map[string]string{
		"text": "Shouting into the void",
	}
	requestBody, _ := json.Marshal(mockComment)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/posts/999/comments", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	server.DB.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGetComments(t *testing.T) {
	server, r := newTestServer(t)
	author := createTestUser(t, server, "author", "author@example.com")
	post := createTestPost(t, server, author.ID, "A discussed post", nil)

	for i := 1; i <= 3; i++ {
		comment := models.Comment{Text: fmt.Sprintf("comment %d", i)}
		comment.Prepare()
		comment.AuthorID = author.ID
		comment.PostID = post.ID
		if _, err := comment.SaveComment(server.DB); err != nil {
			t.Fatalf("Failed to create comment: %v", err)
		}
	}

	r.GET("/api/v1/posts/:id/comments", server.GetComments)

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var responseBody map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	comments := responseBody["response"].([]interface{})
	assert.Len(t, comments, 3)

	// Newest comment first
	first := comments[0].(map[string]interface{})
	assert.Equal(t, "comment 3", first["text"])
}

func TestDeleteComment(t *testing.T) {
	server, r := newTestServer(t)
	author := createTestUser(t, server, "author", "author@example.com")
	commenter := createTestUser(t, server, "commenter", "commenter@example.com")
	post := createTestPost(t, server, author.ID, "A commentable post", nil)

	comment := models.Comment{Text: "Deletable comment"}
	comment.Prepare()
	comment.AuthorID = commenter.ID
	comment.PostID = post.ID
	if _, err := comment.SaveComment(server.DB); err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}

	// The post's author is not the comment's author and must be rejected
	intruderRouter := r.Group("/api/v1")
	intruderRouter.Use(AuthMiddlewareForTests(author.ID))
	intruderRouter.DELETE("/comments/:id", server.DeleteComment)

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", comment.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The comment's author may delete it
	ownerRouter := r.Group("/api/v2")
	ownerRouter.Use(AuthMiddlewareForTests(commenter.ID))
	ownerRouter.DELETE("/comments/:id", server.DeleteComment)

	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v2/comments/%d", comment.ID), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	server.DB.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
