package controllers

import (
	"Postline/models"
)

func userToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		PublicID:       user.PublicID,
		Username:       user.Username,
		Email:          user.Email,
		AvatarPath:     user.AvatarPath,
		FollowersCount: int(user.FollowersCount),
		FollowingCount: int(user.FollowingCount),
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func groupToDTO(group *models.Group) GroupDTO {
	return GroupDTO{
		ID:          group.ID,
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
}

func postToDTO(post *models.Post) PostDTO {
	dto := PostDTO{
		ID:        post.ID,
		PublicID:  post.PublicID,
		Text:      post.Text,
		HelpText:  post.HelpText,
		ImagePath: post.ImagePath,
		PubDate:   post.PubDate,
		AuthorID:  post.AuthorID,
		Author: UserSummaryDTO{
			ID:       post.Author.ID,
			Username: post.Author.Username,
		},
		GroupID: post.GroupID,
	}
	if post.Group != nil {
		group := groupToDTO(post.Group)
		dto.Group = &group
	}
	return dto
}

func postsToDTOs(posts []models.Post) []PostDTO {
	dtos := make([]PostDTO, len(posts))
	for i := range posts {
		dtos[i] = postToDTO(&posts[i])
	}
	return dtos
}

func commentToDTO(comment *models.Comment) CommentDTO {
	return CommentDTO{
		ID:       comment.ID,
		PublicID: comment.PublicID,
		AuthorID: comment.AuthorID,
		Username: comment.Author.Username,
		Text:     comment.Text,
		Created:  comment.CreatedAt,
	}
}

// buildPagination describes a fixed-size feed window. total_pages is never
// zero for a non-empty feed; page has already been clamped by the model.
func buildPagination(page int, limit int, total int64) PaginationDTO {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PaginationDTO{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalPages > 0,
	}
}
