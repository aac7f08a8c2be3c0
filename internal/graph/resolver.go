package graph

import (
	"context"

	"github.com/d60-Lab/journaly/internal/model"
	"github.com/d60-Lab/journaly/internal/service"
)

// Resolver is the root resolver for queries and mutations. The acting user is read from
// the request context and passed to services explicitly.
type Resolver struct {
	svc service.Services
}

func NewResolver(svc service.Services) *Resolver {
	return &Resolver{svc: svc}
}

func (r *Resolver) post(p *model.Post) *postResolver {
	return &postResolver{root: r, p: p}
}

// Queries

func (r *Resolver) CurrentUser(ctx context.Context) (*userResolver, error) {
	u, err := r.svc.Users.CurrentUser(ctx, service.ActorFrom(ctx))
	if err != nil {
		return nil, wrap(err)
	}
	if u == nil {
		return nil, nil
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) UserByID(ctx context.Context, args struct{ ID int32 }) (*userResolver, error) {
	u, err := r.svc.Users.UserByID(ctx, int(args.ID))
	if err != nil {
		return nil, wrap(err)
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) SearchUsers(ctx context.Context, args struct{ Search string }) ([]*userResolver, error) {
	users, err := r.svc.Users.SearchUsers(ctx, args.Search)
	if err != nil {
		return nil, wrap(err)
	}
	out := make([]*userResolver, len(users))
	for i, u := range users {
		out[i] = &userResolver{u: u}
	}
	return out, nil
}

func (r *Resolver) PostByID(ctx context.Context, args struct{ ID int32 }) (*postResolver, error) {
	p, err := r.svc.Posts.PostByID(ctx, int(args.ID))
	if err != nil {
		return nil, wrap(err)
	}
	return &postResolver{root: r, p: p, full: p}, nil
}

func (r *Resolver) ThreadByID(ctx context.Context, args struct{ ID int32 }) (*threadResolver, error) {
	t, err := r.svc.Threads.GetThread(ctx, int(args.ID))
	if err != nil {
		return nil, wrap(err)
	}
	return &threadResolver{root: r, t: t}, nil
}

func (r *Resolver) ProfilePosts(ctx context.Context, args struct {
	UserID int32
	Cursor *int32
	Limit  *int32
}) ([]*postResolver, error) {
	cursor, limit := 0, 0
	if args.Cursor != nil {
		cursor = int(*args.Cursor)
	}
	if args.Limit != nil {
		limit = int(*args.Limit)
	}
	posts, err := r.svc.Posts.ProfilePosts(ctx, int(args.UserID), cursor, limit)
	if err != nil {
		return nil, wrap(err)
	}
	out := make([]*postResolver, len(posts))
	for i, p := range posts {
		out[i] = r.post(p)
	}
	return out, nil
}

// Mutations

func (r *Resolver) Signup(ctx context.Context, args struct {
	Email    string
	Handle   string
	Name     *string
	Password string
}) (*authPayloadResolver, error) {
	in := service.SignupInput{Email: args.Email, Handle: args.Handle, Password: args.Password}
	if args.Name != nil {
		in.Name = *args.Name
	}
	res, err := r.svc.Users.Signup(ctx, in)
	if err != nil {
		return nil, wrap(err)
	}
	return &authPayloadResolver{res: res}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Identifier string
	Password   string
}) (*authPayloadResolver, error) {
	res, err := r.svc.Users.Login(ctx, service.LoginInput{Identifier: args.Identifier, Password: args.Password})
	if err != nil {
		return nil, wrap(err)
	}
	return &authPayloadResolver{res: res}, nil
}

func (r *Resolver) CreatePost(ctx context.Context, args struct {
	Title string
	Body  string
}) (*postResolver, error) {
	p, err := r.svc.Posts.CreatePost(ctx, service.ActorFrom(ctx), service.CreatePostInput{Title: args.Title, Body: args.Body})
	if err != nil {
		return nil, wrap(err)
	}
	return r.post(p), nil
}

func (r *Resolver) CreateThread(ctx context.Context, args struct {
	PostID             int32
	StartIndex         int32
	EndIndex           int32
	HighlightedContent string
}) (*threadResolver, error) {
	t, err := r.svc.Threads.CreateThread(ctx, service.ActorFrom(ctx), service.CreateThreadInput{
		PostID:             int(args.PostID),
		StartIndex:         int(args.StartIndex),
		EndIndex:           int(args.EndIndex),
		HighlightedContent: args.HighlightedContent,
	})
	if err != nil {
		return nil, wrap(err)
	}
	return &threadResolver{root: r, t: t}, nil
}

func (r *Resolver) CreateComment(ctx context.Context, args struct {
	ThreadID int32
	Body     string
}) (*commentResolver, error) {
	c, _, err := r.svc.Comments.CreateComment(ctx, service.ActorFrom(ctx), int(args.ThreadID), args.Body)
	if err != nil {
		return nil, wrap(err)
	}
	return &commentResolver{root: r, c: c}, nil
}

func (r *Resolver) UpdateComment(ctx context.Context, args struct {
	CommentID int32
	Body      string
}) (*commentResolver, error) {
	c, err := r.svc.Comments.UpdateComment(ctx, service.ActorFrom(ctx), int(args.CommentID), args.Body)
	if err != nil {
		return nil, wrap(err)
	}
	return &commentResolver{root: r, c: c}, nil
}

func (r *Resolver) DeleteComment(ctx context.Context, args struct{ CommentID int32 }) (*commentResolver, error) {
	c, err := r.svc.Comments.DeleteComment(ctx, service.ActorFrom(ctx), int(args.CommentID))
	if err != nil {
		return nil, wrap(err)
	}
	return &commentResolver{root: r, c: c}, nil
}

func (r *Resolver) CreatePostComment(ctx context.Context, args struct {
	PostID int32
	Body   string
}) (*postCommentResolver, error) {
	c, _, err := r.svc.Comments.CreatePostComment(ctx, service.ActorFrom(ctx), int(args.PostID), args.Body)
	if err != nil {
		return nil, wrap(err)
	}
	return &postCommentResolver{root: r, c: c}, nil
}

func (r *Resolver) UpdatePostComment(ctx context.Context, args struct {
	PostCommentID int32
	Body          string
}) (*postCommentResolver, error) {
	c, err := r.svc.Comments.UpdatePostComment(ctx, service.ActorFrom(ctx), int(args.PostCommentID), args.Body)
	if err != nil {
		return nil, wrap(err)
	}
	return &postCommentResolver{root: r, c: c}, nil
}

func (r *Resolver) DeletePostComment(ctx context.Context, args struct{ PostCommentID int32 }) (*postCommentResolver, error) {
	c, err := r.svc.Comments.DeletePostComment(ctx, service.ActorFrom(ctx), int(args.PostCommentID))
	if err != nil {
		return nil, wrap(err)
	}
	return &postCommentResolver{root: r, c: c}, nil
}

func (r *Resolver) UpdateDigestEmailConfig(ctx context.Context, args struct{ DigestEmailConfig string }) (*userResolver, error) {
	u, err := r.svc.Users.UpdateDigestEmailConfig(ctx, service.ActorFrom(ctx), model.DigestEmailConfig(args.DigestEmailConfig))
	if err != nil {
		return nil, wrap(err)
	}
	return &userResolver{u: u}, nil
}
