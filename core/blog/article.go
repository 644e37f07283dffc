package blog

import (
	"time"

	"github.com/vmihailov/learnhub/paging"
)

type Article struct {
	ID        string    `json:"id" db:"article_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Version   int       `json:"-" db:"version"`
}

type ArticleNew struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type ArticleUp struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type Listing struct {
	Items []Article `json:"items"`
	paging.Page
	PreviousPage int `json:"previousPage"`
	NextPage     int `json:"nextPage"`
}
