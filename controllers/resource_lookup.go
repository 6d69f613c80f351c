package controllers

import (
	"errors"
	"strconv"
	"strings"

	"Postline/models"

	"gorm.io/gorm"
)

var errInvalidIdentifier = errors.New("invalid identifier")

// resolveUserByUsername loads a user by their profile name. Usernames are
// stored lowercased, so the lookup normalizes the same way Prepare does.
func resolveUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errInvalidIdentifier
	}
	var user models.User
	if err := db.Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func resolveGroupBySlug(db *gorm.DB, slug string) (*models.Group, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, errInvalidIdentifier
	}
	var group models.Group
	if err := db.Where("slug = ?", slug).Take(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// resolvePostByIdentifier accepts either the numeric id or the public uuid.
func resolvePostByIdentifier(db *gorm.DB, identifier string) (*models.Post, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errInvalidIdentifier
	}

	var post models.Post
	if pid, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		if err := db.Preload("Author").Preload("Group").Where("id = ?", uint(pid)).Take(&post).Error; err != nil {
			return nil, err
		}
		return &post, nil
	}

	if len(identifier) == 36 {
		if err := db.Preload("Author").Preload("Group").Where("public_id = ?", identifier).Take(&post).Error; err != nil {
			return nil, err
		}
		return &post, nil
	}

	return nil, errInvalidIdentifier
}
