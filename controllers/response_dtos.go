package controllers

import "time"

type UserDTO struct {
	ID             uint      `json:"id"`
	PublicID       string    `json:"public_id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	AvatarPath     string    `json:"avatar_path"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UserSummaryDTO struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type FollowUserDTO struct {
	UserDTO
	ViewerFollowing  bool `json:"viewer_following"`
	ViewerFollowedBy bool `json:"viewer_followed_by"`
	Mutual           bool `json:"mutual"`
}

type GroupDTO struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type PostDTO struct {
	ID        uint           `json:"id"`
	PublicID  string         `json:"public_id"`
	Text      string         `json:"text"`
	HelpText  string         `json:"help_text"`
	ImagePath string         `json:"image_path"`
	PubDate   time.Time      `json:"pub_date"`
	AuthorID  uint           `json:"author_id"`
	Author    UserSummaryDTO `json:"author"`
	GroupID   *uint          `json:"group_id"`
	Group     *GroupDTO      `json:"group"`
}

type CommentDTO struct {
	ID       uint      `json:"id"`
	PublicID string    `json:"public_id"`
	AuthorID uint      `json:"author_id"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created"`
}

type PaginationDTO struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}
