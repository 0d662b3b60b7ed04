package handler

import (
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/service"
)

// The types below are the public wire shape. Models never reach the
// encoder directly, so a new model field stays private until it is added here.

type ownerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type blogResponse struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Author string         `json:"author"`
	URL    string         `json:"url"`
	Likes  int            `json:"likes"`
	User   *ownerResponse `json:"user"`
}

type userBlogResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

type userResponse struct {
	ID       string             `json:"id"`
	Username string             `json:"username"`
	Name     string             `json:"name"`
	Blogs    []userBlogResponse `json:"blogs"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type favoriteResponse struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

type mostBlogsResponse struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

type mostLikesResponse struct {
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

type statsResponse struct {
	TotalLikes   int                `json:"totalLikes"`
	FavoriteBlog *favoriteResponse  `json:"favoriteBlog"`
	MostBlogs    *mostBlogsResponse `json:"mostBlogs"`
	MostLikes    *mostLikesResponse `json:"mostLikes"`
}

func projectBlog(b *model.Blog) blogResponse {
	out := blogResponse{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
	}
	if b.Owner != nil {
		out.User = &ownerResponse{ID: b.Owner.ID, Username: b.Owner.Username, Name: b.Owner.Name}
	}
	return out
}

func projectBlogs(blogs []model.Blog) []blogResponse {
	out := make([]blogResponse, 0, len(blogs))
	for i := range blogs {
		out = append(out, projectBlog(&blogs[i]))
	}
	return out
}

// projectUser never includes the password hash.
func projectUser(u *model.User, blogs []model.Blog) userResponse {
	out := userResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Blogs:    make([]userBlogResponse, 0, len(blogs)),
	}
	for _, b := range blogs {
		out.Blogs = append(out.Blogs, userBlogResponse{ID: b.ID, Title: b.Title, Author: b.Author, URL: b.URL})
	}
	return out
}

func projectStats(s *service.Stats) statsResponse {
	out := statsResponse{TotalLikes: s.TotalLikes}
	if s.FavoriteBlog != nil {
		out.FavoriteBlog = &favoriteResponse{
			Title:  s.FavoriteBlog.Title,
			Author: s.FavoriteBlog.Author,
			Likes:  s.FavoriteBlog.Likes,
		}
	}
	if s.MostBlogs != nil {
		out.MostBlogs = &mostBlogsResponse{Author: s.MostBlogs.Author, Blogs: s.MostBlogs.Count}
	}
	if s.MostLikes != nil {
		out.MostLikes = &mostLikesResponse{Author: s.MostLikes.Author, Likes: s.MostLikes.Count}
	}
	return out
}
