package models

import (
	"html"
	"os"
	"strings"
	"time"

	"github.com/twinj/uuid"
	"gorm.io/gorm"
)

// PostsPerPage is the fixed window for every post feed.
const PostsPerPage = 10

type Post struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	PublicID  string    `gorm:"type:uuid;uniqueIndex;column:public_id" json:"public_id"`
	Text      string    `gorm:"text;not null;" json:"text"`
	HelpText  string    `gorm:"text" json:"help_text"`
	ImagePath string    `gorm:"size:255;null;" json:"image_path"`
	PubDate   time.Time `gorm:"column:pub_date;default:CURRENT_TIMESTAMP" json:"pub_date"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	Group     *Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if strings.TrimSpace(p.PublicID) == "" {
		p.PublicID = uuid.NewV4().String()
	}
	return nil
}

func (p *Post) Prepare() {
	p.ID = 0
	p.Text = html.EscapeString(strings.TrimSpace(p.Text))
	p.HelpText = html.EscapeString(strings.TrimSpace(p.HelpText))
	p.Author = User{}
	p.PubDate = time.Now()
	p.UpdatedAt = time.Now()
}

func (p *Post) Validate() map[string]string {
	var errorMessages = make(map[string]string)

	if p.Text == "" {
		errorMessages["Required_text"] = "Text is required"
	}
	if p.AuthorID == 0 {
		errorMessages["Required_author"] = "Author is required"
	}
	return errorMessages
}

func (p *Post) SavePost(db *gorm.DB) (*Post, error) {
	err := db.Create(&p).Error
	if err != nil {
		return nil, err
	}
	if err := db.Model(p).Association("Author").Find(&p.Author); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Post) FindPostByID(db *gorm.DB, pid uint) (*Post, error) {
	var post Post
	err := db.Preload("Author").Preload("Group").Where("id = ?", pid).Take(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdateAPost edits text and group in place. pub_date and author_id are
// immutable and never appear in the update set; the image has its own
// upload path.
func (p *Post) UpdateAPost(db *gorm.DB) (*Post, error) {
	err := db.Model(&Post{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"text":       p.Text,
		"help_text":  p.HelpText,
		"group_id":   p.GroupID,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, err
	}

	err = db.Preload("Author").Preload("Group").Where("id = ?", p.ID).Take(&p).Error
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Post) UpdateAPostImage(db *gorm.DB, pid uint) (*Post, error) {
	err := db.Model(&Post{}).Where("id = ?", pid).Updates(map[string]interface{}{
		"image_path": p.ImagePath,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, err
	}

	err = db.Preload("Author").Preload("Group").Where("id = ?", pid).Take(&p).Error
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Post) DeleteAPost(db *gorm.DB) (int64, error) {
	// Comments do not outlive their post
	if err := db.Where("post_id = ?", p.ID).Delete(&Comment{}).Error; err != nil {
		return 0, err
	}

	result := db.Where("id = ?", p.ID).Delete(&Post{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// When a user is deleted, we also delete the posts that the user had,
// together with the comments other users left on them.
func (p *Post) DeleteUserPosts(db *gorm.DB, uid uint) (int64, error) {
	if err := db.Where(
		"post_id IN (?)",
		db.Model(&Post{}).Select("id").Where("author_id = ?", uid),
	).Delete(&Comment{}).Error; err != nil {
		return 0, err
	}

	result := db.Where("author_id = ?", uid).Delete(&Post{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// feedScope is the shared ordering for every feed: newest first, id as the
// tie breaker because pub_date only has second granularity.
func feedScope(db *gorm.DB) *gorm.DB {
	return db.Model(&Post{}).Preload("Author").Preload("Group").
		Order("pub_date DESC, id DESC")
}

// PaginatePosts runs the given filtered query against a deterministic
// window of PostsPerPage rows. An out-of-range page clamps to the last
// non-empty page rather than returning an empty result.
func PaginatePosts(query *gorm.DB, page int) ([]Post, int64, int, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	totalPages := int((total + PostsPerPage - 1) / PostsPerPage)
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	offset := (page - 1) * PostsPerPage

	var posts []Post
	err := feedScope(query.Session(&gorm.Session{})).
		Offset(offset).
		Limit(PostsPerPage).
		Find(&posts).Error
	if err != nil {
		return nil, 0, 0, err
	}
	return posts, total, page, nil
}

func (p *Post) FindGlobalFeed(db *gorm.DB, page int) ([]Post, int64, int, error) {
	return PaginatePosts(db.Model(&Post{}), page)
}

func (p *Post) FindGroupFeed(db *gorm.DB, gid uint, page int) ([]Post, int64, int, error) {
	return PaginatePosts(db.Model(&Post{}).Where("group_id = ?", gid), page)
}

func (p *Post) FindAuthorFeed(db *gorm.DB, uid uint, page int) ([]Post, int64, int, error) {
	return PaginatePosts(db.Model(&Post{}).Where("author_id = ?", uid), page)
}

// FindFollowedFeed returns posts from the authors the given user follows.
func (p *Post) FindFollowedFeed(db *gorm.DB, uid uint, page int) ([]Post, int64, int, error) {
	followed := db.Model(&Follow{}).Select("followed_id").Where("follower_id = ?", uid)
	return PaginatePosts(db.Model(&Post{}).Where("author_id IN (?)", followed), page)
}

func (p *Post) CountUserPosts(db *gorm.DB, uid uint) (int64, error) {
	var count int64
	err := db.Model(&Post{}).Where("author_id = ?", uid).Count(&count).Error
	return count, err
}

func (p *Post) AfterFind(tx *gorm.DB) (err error) {
	if p.ImagePath == "" || strings.HasPrefix(p.ImagePath, "http") {
		return nil
	}
	bucket := os.Getenv("S3_BUCKET")
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	key := p.ImagePath
	if !strings.HasPrefix(key, "PostImages/") {
		key = "PostImages/" + key
	}
	p.ImagePath = "https://" + bucket + ".s3." + region + ".amazonaws.com/" + key
	return nil
}
