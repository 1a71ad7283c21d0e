package handlers

import (
	"time"

	appForum "github.com/openfun/ashley-sub000/internal/application/forum"
	"github.com/openfun/ashley-sub000/internal/application/launch"
	"github.com/openfun/ashley-sub000/internal/domain/forum"
)

type ForumResponse struct {
	ID        uint      `json:"id"`
	LTIID     string    `json:"lti_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

func ToForumResponse(f *forum.Forum) ForumResponse {
	return ForumResponse{
		ID:        f.ID(),
		LTIID:     f.LTIID().String(),
		Name:      f.Name(),
		URL:       launch.ForumURL(f),
		Archived:  f.IsArchived(),
		CreatedAt: f.CreatedAt(),
	}
}

type TopicResponse struct {
	ID        uint      `json:"id"`
	ForumID   uint      `json:"forum_id"`
	PosterID  uint      `json:"poster_id"`
	Subject   string    `json:"subject"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToTopicResponse(t *forum.Topic) TopicResponse {
	return TopicResponse{
		ID:        t.ID(),
		ForumID:   t.ForumID(),
		PosterID:  t.PosterID(),
		Subject:   t.Subject(),
		Locked:    t.IsLocked(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}

type PostResponse struct {
	ID        uint      `json:"id"`
	TopicID   uint      `json:"topic_id"`
	PosterID  uint      `json:"poster_id"`
	Content   string    `json:"content"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToPostResponse(p *forum.Post) PostResponse {
	return PostResponse{
		ID:        p.ID(),
		TopicID:   p.TopicID(),
		PosterID:  p.PosterID(),
		Content:   p.Content(),
		Approved:  p.IsApproved(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

type ForumPageResponse struct {
	Forum  ForumResponse   `json:"forum"`
	Topics []TopicResponse `json:"topics"`
	Locked bool            `json:"locked"`
}

func ToForumPageResponse(page *appForum.ForumPage) ForumPageResponse {
	topics := make([]TopicResponse, 0, len(page.Topics))
	for _, t := range page.Topics {
		topics = append(topics, ToTopicResponse(t))
	}
	return ForumPageResponse{
		Forum:  ToForumResponse(page.Forum),
		Topics: topics,
		Locked: page.Locked,
	}
}

type TopicPageResponse struct {
	Topic  TopicResponse  `json:"topic"`
	Posts  []PostResponse `json:"posts"`
	Locked bool           `json:"locked"`
}

func ToTopicPageResponse(page *appForum.TopicPage) TopicPageResponse {
	posts := make([]PostResponse, 0, len(page.Posts))
	for _, p := range page.Posts {
		posts = append(posts, ToPostResponse(p))
	}
	return TopicPageResponse{
		Topic:  ToTopicResponse(page.Topic),
		Posts:  posts,
		Locked: page.Locked,
	}
}
