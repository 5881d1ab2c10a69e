package models

import "time"

type User struct {
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash
}

type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Likes     int       `json:"likes"`
	LikedBy   []string  `json:"likedBy"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// HasLiked reports whether username is already among the post's voters.
func (p *Post) HasLiked(username string) bool {
	for _, u := range p.LikedBy {
		if u == username {
			return true
		}
	}
	return false
}

// Normalize replaces nil slices so the post always encodes as [] rather than null.
func (p *Post) Normalize() {
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}
