package graph

import (
	"context"
	"sync"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/service"
)

// Each resolver below maps one model to its GraphQL type field by field.

type userResolver struct {
	u *model.User
}

func (r *userResolver) ID() int32      { return int32(r.u.ID) }
func (r *userResolver) Handle() string { return r.u.Handle }

func (r *userResolver) Name() *string {
	if r.u.Name == "" {
		return nil
	}
	return &r.u.Name
}

func (r *userResolver) Email(ctx context.Context) *string {
	if service.ActorFrom(ctx).UserID != r.u.ID {
		return nil
	}
	return &r.u.Email
}

func (r *userResolver) DigestEmailConfig() string {
	if r.u.DigestEmailConfig == "" {
		return string(model.DigestOff)
	}
	return string(r.u.DigestEmailConfig)
}

func (r *userResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.u.CreatedAt} }

// authorOf returns the preloaded author or loads it.
func authorOf(ctx context.Context, root *Resolver, author *model.User, id int) (*userResolver, error) {
	if author != nil {
		return &userResolver{u: author}, nil
	}
	u, err := root.svc.Users.UserByID(ctx, id)
	if err != nil {
		return nil, wrap(err)
	}
	return &userResolver{u: u}, nil
}

type postResolver struct {
	root *Resolver
	p    *model.Post

	mu sync.Mutex
	// full has threads and post comments preloaded
	full *model.Post
}

func (r *postResolver) ID() int32               { return int32(r.p.ID) }
func (r *postResolver) Title() string           { return r.p.Title }
func (r *postResolver) Body() string            { return r.p.Body }
func (r *postResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.p.CreatedAt} }

func (r *postResolver) Author(ctx context.Context) (*userResolver, error) {
	return authorOf(ctx, r.root, r.p.Author, r.p.AuthorID)
}

// discussion returns the post with threads and post comments, loading it once.
// Sibling fields may resolve concurrently.
func (r *postResolver) discussion(ctx context.Context) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full != nil {
		return r.full, nil
	}
	full, err := r.root.svc.Posts.PostByID(ctx, r.p.ID)
	if err != nil {
		return nil, wrap(err)
	}
	r.full = full
	return full, nil
}

func (r *postResolver) Threads(ctx context.Context) ([]*threadResolver, error) {
	p, err := r.discussion(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*threadResolver, len(p.Threads))
	for i, t := range p.Threads {
		out[i] = &threadResolver{root: r.root, t: t}
	}
	return out, nil
}

func (r *postResolver) PostComments(ctx context.Context) ([]*postCommentResolver, error) {
	p, err := r.discussion(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*postCommentResolver, len(p.PostComments))
	for i, c := range p.PostComments {
		out[i] = &postCommentResolver{root: r.root, c: c}
	}
	return out, nil
}

type threadResolver struct {
	root *Resolver
	t    *model.Thread
}

func (r *threadResolver) ID() int32                  { return int32(r.t.ID) }
func (r *threadResolver) PostID() int32              { return int32(r.t.PostID) }
func (r *threadResolver) StartIndex() int32          { return int32(r.t.StartIndex) }
func (r *threadResolver) EndIndex() int32            { return int32(r.t.EndIndex) }
func (r *threadResolver) HighlightedContent() string { return r.t.HighlightedContent }
func (r *threadResolver) CreatedAt() graphql.Time    { return graphql.Time{Time: r.t.CreatedAt} }

func (r *threadResolver) Comments() []*commentResolver {
	out := make([]*commentResolver, len(r.t.Comments))
	for i, c := range r.t.Comments {
		out[i] = &commentResolver{root: r.root, c: c}
	}
	return out
}

type commentResolver struct {
	root *Resolver
	c    *model.Comment
}

func (r *commentResolver) ID() int32               { return int32(r.c.ID) }
func (r *commentResolver) ThreadID() int32         { return int32(r.c.ThreadID) }
func (r *commentResolver) Body() string            { return r.c.Body }
func (r *commentResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.c.CreatedAt} }
func (r *commentResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.c.UpdatedAt} }

func (r *commentResolver) Author(ctx context.Context) (*userResolver, error) {
	return authorOf(ctx, r.root, r.c.Author, r.c.AuthorID)
}

type postCommentResolver struct {
	root *Resolver
	c    *model.PostComment
}

func (r *postCommentResolver) ID() int32               { return int32(r.c.ID) }
func (r *postCommentResolver) PostID() int32           { return int32(r.c.PostID) }
func (r *postCommentResolver) Body() string            { return r.c.Body }
func (r *postCommentResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.c.CreatedAt} }
func (r *postCommentResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.c.UpdatedAt} }

func (r *postCommentResolver) Author(ctx context.Context) (*userResolver, error) {
	return authorOf(ctx, r.root, r.c.Author, r.c.AuthorID)
}

type authPayloadResolver struct {
	res *service.AuthResult
}

func (r *authPayloadResolver) Token() string      { return r.res.Token }
func (r *authPayloadResolver) User() *userResolver { return &userResolver{u: r.res.User} }
