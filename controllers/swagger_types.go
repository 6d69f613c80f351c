package controllers

// Request and response shapes referenced from the handler annotations.
// They mirror the gin.H envelopes the handlers actually emit.

type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"secret123"`
}

type UserCreateRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"secret123"`
}

type UserUpdateRequest struct {
	Email           string `json:"email,omitempty" example:"alice@example.com"`
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

type ResetPasswordRequest struct {
	Email          string `json:"email"`
	Token          string `json:"token"`
	NewPassword    string `json:"new_password"`
	RetypePassword string `json:"retype_password"`
}

type PostCreateRequest struct {
	Text     string `json:"text" example:"Hello, world"`
	HelpText string `json:"help_text,omitempty"`
	GroupID  *uint  `json:"group_id,omitempty"`
}

type PostUpdateRequest struct {
	Text     string `json:"text"`
	HelpText string `json:"help_text,omitempty"`
	GroupID  *uint  `json:"group_id,omitempty"`
}

type GroupCreateRequest struct {
	Title       string `json:"title" example:"Tech"`
	Slug        string `json:"slug" example:"tech"`
	Description string `json:"description,omitempty"`
}

type CommentCreateRequest struct {
	Text string `json:"text" example:"Nice post"`
}

type ErrorResponse struct {
	Status int               `json:"status"`
	Error  map[string]string `json:"error"`
}

type SimpleMessageResponse struct {
	Status   int    `json:"status"`
	Response string `json:"response"`
}

type TokenResponse struct {
	Status   int `json:"status"`
	Response struct {
		Token string  `json:"token"`
		User  UserDTO `json:"user"`
	} `json:"response"`
}

type UserResponseDoc struct {
	Status   int     `json:"status"`
	Response UserDTO `json:"response"`
}

type UserListResponseDoc struct {
	Status   int       `json:"status"`
	Response []UserDTO `json:"response"`
}

type PostResponseDoc struct {
	Status   int     `json:"status"`
	Response PostDTO `json:"response"`
}

type PostListResponseDoc struct {
	Status     int           `json:"status"`
	Response   []PostDTO     `json:"response"`
	Pagination PaginationDTO `json:"pagination"`
}

type PostDetailResponseDoc struct {
	Status   int `json:"status"`
	Response struct {
		Post     PostDTO      `json:"post"`
		Comments []CommentDTO `json:"comments"`
	} `json:"response"`
}

type ProfileFeedResponseDoc struct {
	Status   int `json:"status"`
	Response struct {
		Author     UserDTO   `json:"author"`
		Posts      []PostDTO `json:"posts"`
		PostsCount int64     `json:"posts_count"`
		Following  bool      `json:"following"`
	} `json:"response"`
	Pagination PaginationDTO `json:"pagination"`
}

type GroupFeedResponseDoc struct {
	Status   int `json:"status"`
	Response struct {
		Group GroupDTO  `json:"group"`
		Posts []PostDTO `json:"posts"`
	} `json:"response"`
	Pagination PaginationDTO `json:"pagination"`
}

type GroupResponseDoc struct {
	Status   int      `json:"status"`
	Response GroupDTO `json:"response"`
}

type GroupListResponseDoc struct {
	Status   int        `json:"status"`
	Response []GroupDTO `json:"response"`
}

type CommentResponseDoc struct {
	Status   int        `json:"status"`
	Response CommentDTO `json:"response"`
}

type CommentListResponseDoc struct {
	Status   int          `json:"status"`
	Response []CommentDTO `json:"response"`
}

type FollowListResponseDoc struct {
	Status   int `json:"status"`
	Response struct {
		Users      []FollowUserDTO `json:"users"`
		NextCursor *string         `json:"next_cursor"`
	} `json:"response"`
}
