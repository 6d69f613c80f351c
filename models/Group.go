package models

import (
	"html"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Group is a named community that posts can be published into. The slug is
// the group's URL identity and must never change once links exist, so there
// is deliberately no update method for it.
type Group struct {
	ID          uint      `gorm:"primary_key;autoIncrement" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"text" json:"description"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (g *Group) Prepare() {
	g.Title = html.EscapeString(strings.TrimSpace(g.Title))
	g.Slug = strings.ToLower(strings.TrimSpace(g.Slug))
	g.Description = html.EscapeString(strings.TrimSpace(g.Description))
	g.CreatedAt = time.Now()
}

func (g *Group) Validate() map[string]string {
	var errorMessages = make(map[string]string)

	if g.Title == "" {
		errorMessages["Required_title"] = "Title is required"
	}
	if g.Slug == "" {
		errorMessages["Required_slug"] = "Slug is required"
	}
	return errorMessages
}

func (g *Group) SaveGroup(db *gorm.DB) (*Group, error) {
	err := db.Create(&g).Error
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Group) FindAllGroups(db *gorm.DB) (*[]Group, error) {
	var groups []Group
	err := db.Order("title asc").Limit(100).Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return &groups, nil
}

func (g *Group) FindGroupBySlug(db *gorm.DB, slug string) (*Group, error) {
	var group Group
	normalized := strings.ToLower(strings.TrimSpace(slug))
	err := db.Where("slug = ?", normalized).Take(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (g *Group) FindGroupByID(db *gorm.DB, gid uint) (*Group, error) {
	var group Group
	err := db.Where("id = ?", gid).Take(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteAGroup removes the group after detaching its posts. Posts outlive
// their group: group_id is nulled, nothing else about the post changes.
func (g *Group) DeleteAGroup(db *gorm.DB, gid uint) (int64, error) {
	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Post{}).Where("group_id = ?", gid).
			UpdateColumn("group_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", gid).Delete(&Group{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
