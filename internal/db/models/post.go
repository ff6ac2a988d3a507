package models

import "time"

// Body holds the text content of a post, stored separately so post metadata
// can be listed without dragging full article text along.
type Body struct {
	// ID is the unique identifier for the body.
	ID uint64 `gorm:"primaryKey"`
	// Text is the full article text.
	Text string `gorm:"type:text;not null"`
}

// TableName specifies the database table name for the Body model.
func (Body) TableName() string {
	return "bodies"
}

// Post represents a content post. Its owner must hold a content-owning role
// (writer, admin or superuser) at validation time; that rule lives in the
// post controller, not in the database schema.
type Post struct {
	// ID is the unique identifier for the post.
	ID uint64 `gorm:"primaryKey"`
	// OwnerID references the user owning this post.
	OwnerID uint64 `gorm:"column:owner_id;not null;index"`
	// Owner is the associated user account.
	// When a user is deleted, their posts are removed as well (CASCADE).
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	// Title is the display title, limited to 50 characters.
	Title string `gorm:"size:50;not null"`
	// BodyID references the post's text content.
	BodyID uint64 `gorm:"column:body_id;not null"`
	// Body is the associated text content.
	// When a body is deleted, posts referencing it are removed (CASCADE).
	Body Body `gorm:"foreignKey:BodyID;constraint:OnDelete:CASCADE"`
	// IsRestricted marks the post as restricted content.
	IsRestricted bool `gorm:"default:false"`
	// Rating is the aggregated post rating.
	Rating float64 `gorm:"default:0"`
	// CreatedAt is the timestamp when the post was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the post was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Post model.
func (Post) TableName() string {
	return "posts"
}
