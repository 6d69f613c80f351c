package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Postline/models"

	"github.com/stretchr/testify/assert"
)

func TestFollowedFeed(t *testing.T) {
	server, r := newTestServer(t)
	alice := createTestUser(t, server, "alice", "alice@example.com")
	bob := createTestUser(t, server, "bob", "bob@example.com")
	carol := createTestUser(t, server, "carol", "carol@example.com")

	createTestPost(t, server, bob.ID, "bob post one", nil)
	createTestPost(t, server, carol.ID, "carol post", nil)
	createTestPost(t, server, bob.ID, "bob post two", nil)

	aliceRouter := r.Group("/api/v1")
	aliceRouter.Use(AuthMiddlewareForTests(alice.ID))
	aliceRouter.POST("/users/:username/follow", server.FollowUser)
	aliceRouter.GET("/feed", server.GetFollowedFeed)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/users/bob/follow", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var responseBody map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	posts := responseBody["response"].([]interface{})
	assert.Len(t, posts, 2)

	// Only bob's posts, newest first
	first := posts[0].(map[string]interface{})
	second := posts[1].(map[string]interface{})
	assert.Equal(t, "bob post two", first["text"])
	assert.Equal(t, "bob post one", second["text"])

	// Carol follows nobody, so her feed is empty
	carolRouter := r.Group("/as-carol/api/v1")
	carolRouter.Use(AuthMiddlewareForTests(carol.ID))
	carolRouter.GET("/feed", server.GetFollowedFeed)

	req, _ = http.NewRequest(http.MethodGet, "/as-carol/api/v1/feed", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	posts = responseBody["response"].([]interface{})
	assert.Len(t, posts, 0)
}

func TestFollowedFeedUnauthenticated(t *testing.T) {
	server, r := newTestServer(t)

	r.GET("/api/v1/feed", server.GetFollowedFeed)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGroupFeed(t *testing.T) {
	server, r := newTestServer(t)
	user := createTestUser(t, server, "testuser", "testuser@example.com")

	group := models.Group{Title: "Tech", Slug: "tech"}
	group.Prepare()
	if _, err := group.SaveGroup(server.DB); err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}

	createTestPost(t, server, user.ID, "in the group", &group.ID)
	createTestPost(t, server, user.ID, "outside the group", nil)

	r.GET("/api/v1/groups/:slug/posts", server.GetGroupPosts)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/groups/tech/posts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var responseBody map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	response := responseBody["response"].(map[string]interface{})

	responseGroup := response["group"].(map[string]interface{})
	assert.Equal(t, "tech", responseGroup["slug"])

	posts := response["posts"].([]interface{})
	assert.Len(t, posts, 1)
	first := posts[0].(map[string]interface{})
	assert.Equal(t, "in the group", first["text"])
}

func TestGroupFeedUnknownSlug(t *testing.T) {
	server, r := newTestServer(t)

	r.GET("/api/v1/groups/:slug/posts", server.GetGroupPosts)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/groups/nope/posts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSinglePostInGroupAppearsEverywhere(t *testing.T) {
	server, r := newTestServer(t)
	alice := createTestUser(t, server, "alice", "alice@example.com")

	group := models.Group{Title: "Tech", Slug: "tech"}
	group.Prepare()
	if _, err := group.SaveGroup(server.DB); err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}
	createTestPost(t, server, alice.ID, "hello", &group.ID)

	r.GET("/api/v1/posts", server.GetPosts)
	r.GET("/api/v1/groups/:slug/posts", server.GetGroupPosts)

	// Global feed carries exactly the one post
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var responseBody map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	posts := responseBody["response"].([]interface{})
	assert.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].(map[string]interface{})["text"])

	// The group feed carries it too
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/groups/tech/posts", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	response := responseBody["response"].(map[string]interface{})
	groupPosts := response["posts"].([]interface{})
	assert.Len(t, groupPosts, 1)
	assert.Equal(t, "hello", groupPosts[0].(map[string]interface{})["text"])

	// A group that was never created is a 404, not an empty feed
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/groups/other/posts", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserPostsFeed(t *testing.T) {
	server, r := newTestServer(t)
	author := createTestUser(t, server, "author", "author@example.com")
	viewer := createTestUser(t, server, "viewer", "viewer@example.com")

	createTestPost(t, server, author.ID, "author post", nil)

	// The viewer follows the author before reading the profile
	viewerRouter := r.Group("/api/v1")
	viewerRouter.Use(AuthMiddlewareForTests(viewer.ID))
	viewerRouter.POST("/users/:username/follow", server.FollowUser)
	viewerRouter.GET("/users/:username/posts", server.GetUserPosts)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/users/author/follow", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/users/author/posts", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var responseBody map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &responseBody)
	response := responseBody["response"].(map[string]interface{})

	responseAuthor := response["author"].(map[string]interface{})
	assert.Equal(t, "author", responseAuthor["username"])
	assert.Equal(t, float64(1), response["posts_count"])
	assert.Equal(t, true, response["following"])

	posts := response["posts"].([]interface{})
	assert.Len(t, posts, 1)
	first := posts[0].(map[string]interface{})
	assert.Equal(t, "author post", first["text"])
}
