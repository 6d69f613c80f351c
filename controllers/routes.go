package controllers

import (
	"Postline/middlewares"

	"github.com/gin-gonic/gin"
)

func (s *Server) initializeRoutes() {

	s.Router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "postline"})
	})

	v1 := s.Router.Group("/api/v1")
	{
		// Users routes
		v1.POST("/login", middlewares.LoginRateLimitMiddleware(), s.Login)
		v1.POST("/password/forgot", middlewares.LoginRateLimitMiddleware(), s.ForgotPassword)
		v1.POST("/password/reset", middlewares.LoginRateLimitMiddleware(), s.ResetPassword)
		v1.POST("/users", s.CreateUser)
		v1.GET("/users", s.GetUsers)
		v1.GET("/users/:username", s.GetUser)
		v1.PUT("/users/:username", middlewares.TokenAuthMiddleware(s.DB), s.UpdateUser)
		v1.PUT("/users/:username/avatar", middlewares.TokenAuthMiddleware(s.DB), s.UpdateAvatar)
		v1.DELETE("/users/:username", middlewares.TokenAuthMiddleware(s.DB), s.DeleteUser)

		// Post routes
		v1.POST("/posts", middlewares.TokenAuthMiddleware(s.DB), s.CreatePost)
		v1.GET("/posts", s.GetPosts)
		v1.GET("/posts/:id", s.GetPost)
		v1.PUT("/posts/:id", middlewares.TokenAuthMiddleware(s.DB), s.UpdatePost)
		v1.PUT("/posts/:id/image", middlewares.TokenAuthMiddleware(s.DB), s.UpdatePostImage)
		v1.DELETE("/posts/:id", middlewares.TokenAuthMiddleware(s.DB), s.DeletePost)

		// Feed routes
		v1.GET("/feed", middlewares.TokenAuthMiddleware(s.DB), s.GetFollowedFeed)
		v1.GET("/users/:username/posts", middlewares.OptionalAuthMiddleware(s.DB), s.GetUserPosts)

		// Group routes
		v1.POST("/groups", middlewares.TokenAuthMiddleware(s.DB), middlewares.AdminOnlyMiddleware(), s.CreateGroup)
		v1.GET("/groups", s.GetGroups)
		v1.GET("/groups/:slug", s.GetGroup)
		v1.GET("/groups/:slug/posts", s.GetGroupPosts)
		v1.DELETE("/groups/:slug", middlewares.TokenAuthMiddleware(s.DB), middlewares.AdminOnlyMiddleware(), s.DeleteGroup)

		// Comments routes
		v1.POST("/posts/:id/comments", middlewares.TokenAuthMiddleware(s.DB), s.CreateComment)
		v1.GET("/posts/:id/comments", s.GetComments)
		v1.DELETE("/comments/:id", middlewares.TokenAuthMiddleware(s.DB), s.DeleteComment)

		// Follow routes
		v1.POST("/users/:username/follow", middlewares.TokenAuthMiddleware(s.DB), s.FollowUser)
		v1.DELETE("/users/:username/follow", middlewares.TokenAuthMiddleware(s.DB), s.UnfollowUser)
		v1.GET("/users/:username/followers", middlewares.OptionalAuthMiddleware(s.DB), s.GetFollowers)
		v1.GET("/users/:username/following", middlewares.OptionalAuthMiddleware(s.DB), s.GetFollowing)
	}
}
