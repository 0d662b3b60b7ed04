// Package stats computes aggregate figures over a list of blogs.
//
// Every function is pure and tolerates an empty or nil slice. Ties are
// broken in favour of whichever entry appears first in the input.
package stats

import "github.com/sakif/bloglist/internal/model"

// AuthorCount is an author with a number attached: blogs written or likes earned.
type AuthorCount struct {
	Author string
	Count  int
}

// TotalLikes sums the likes of all blogs.
func TotalLikes(blogs []model.Blog) int {
	total := 0
	for _, b := range blogs {
		total += b.Likes
	}
	return total
}

// FavoriteBlog returns the blog with the most likes.
func FavoriteBlog(blogs []model.Blog) (model.Blog, bool) {
	if len(blogs) == 0 {
		return model.Blog{}, false
	}
	fav := blogs[0]
	for _, b := range blogs[1:] {
		if b.Likes > fav.Likes {
			fav = b
		}
	}
	return fav, true
}

// MostBlogs returns the author who wrote the most blogs.
func MostBlogs(blogs []model.Blog) (AuthorCount, bool) {
	return top(blogs, func(model.Blog) int { return 1 })
}

// MostLikes returns the author whose blogs have the most likes in total.
func MostLikes(blogs []model.Blog) (AuthorCount, bool) {
	return top(blogs, func(b model.Blog) int { return b.Likes })
}

// top tallies weight(b) per author and returns the highest tally.
// order remembers first appearance so ties resolve deterministically.
func top(blogs []model.Blog, weight func(model.Blog) int) (AuthorCount, bool) {
	if len(blogs) == 0 {
		return AuthorCount{}, false
	}

	tally := make(map[string]int)
	var order []string
	for _, b := range blogs {
		if _, seen := tally[b.Author]; !seen {
			order = append(order, b.Author)
		}
		tally[b.Author] += weight(b)
	}

	best := AuthorCount{Author: order[0], Count: tally[order[0]]}
	for _, author := range order[1:] {
		if tally[author] > best.Count {
			best = AuthorCount{Author: author, Count: tally[author]}
		}
	}
	return best, true
}
