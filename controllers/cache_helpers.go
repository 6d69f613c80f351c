package controllers

import (
	"context"
	"log"

	"Postline/cache"
)

// invalidateFeedCache drops every cached feed page. Post mutations are rare
// next to feed reads, so a blanket invalidation keeps things simple.
func (server *Server) invalidateFeedCache() {
	ctx := context.Background()
	if err := cache.DeletePattern(ctx, "posts:page:*"); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}
}
