package main

import (
	api "Postline"
)

// @title Postline API
// @version 1.0
// @description API for posts, groups, comments and follows
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Provide a valid JWT as: Bearer <token>
func main() {
	api.Run()
}
