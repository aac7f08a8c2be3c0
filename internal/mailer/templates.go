package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// ThreadCommentData fills the thread activity email.
type ThreadCommentData struct {
	CommenterHandle    string
	PostTitle          string
	HighlightedContent string
	CommentBody        string
	PostURL            string
}

// PostCommentData fills the post comment email sent to a post's author.
type PostCommentData struct {
	CommenterHandle string
	PostTitle       string
	CommentBody     string
	PostURL         string
}

// DigestItem is one comment listed in a digest.
type DigestItem struct {
	CommenterHandle    string
	PostTitle          string
	HighlightedContent string
	CommentBody        string
	PostURL            string
}

// DigestData fills the periodic digest email.
type DigestData struct {
	Handle string
	Period string
	Items  []DigestItem
}

var (
	threadCommentTmpl = template.Must(template.New("thread_comment").Parse(layoutHead + threadCommentBody + layoutFoot))
	postCommentTmpl   = template.Must(template.New("post_comment").Parse(layoutHead + postCommentBody + layoutFoot))
	digestTmpl        = template.Must(template.New("digest").Parse(layoutHead + digestBody + layoutFoot))
)

// PostURL builds the deep link embedded in emails.
func PostURL(siteDomain string, postID int) string {
	return fmt.Sprintf("https://%s/post/%d", strings.TrimSuffix(siteDomain, "/"), postID)
}

func ThreadCommentSubject(postTitle string) string {
	return "New activity on a thread in " + postTitle
}

func PostCommentSubject(postTitle string) string {
	return "New comment on " + postTitle
}

func DigestSubject(period string, count int) string {
	if count == 1 {
		return fmt.Sprintf("Your %s Journaly digest: 1 new comment", period)
	}
	return fmt.Sprintf("Your %s Journaly digest: %d new comments", period, count)
}

func RenderThreadComment(d ThreadCommentData) (string, error) {
	return render(threadCommentTmpl, d)
}

func RenderPostComment(d PostCommentData) (string, error) {
	return render(postCommentTmpl, d)
}

func RenderDigest(d DigestData) (string, error) {
	return render(digestTmpl, d)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

const layoutHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #4391c9; padding-bottom: 10px; margin-bottom: 20px; }
        .quote { background: #f8f9fa; padding: 12px; border-radius: 6px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
        a { color: #4391c9; }
    </style>
</head>
<body>
    <div class="header"><h1>Journaly</h1></div>
`

const layoutFoot = `
    <div class="footer">
        <p>You are receiving this email because you are subscribed to activity on Journaly.</p>
    </div>
</body>
</html>`

const threadCommentBody = `
    <p>Heads up! <strong>@{{.CommenterHandle}}</strong> commented on a post you're subscribed to!</p>
    <p><strong>Journal entry:</strong> {{.PostTitle}}</p>
    <p><strong>Comment thread:</strong> <span class="quote">"{{.HighlightedContent}}"</span></p>
    <p><strong>Comment:</strong> "{{.CommentBody}}"</p>
    <p>Click <a class="post-link" href="{{.PostURL}}">here</a> to go to the journal entry!</p>
`

const postCommentBody = `
    <p><strong>@{{.CommenterHandle}}</strong> left a comment on your journal entry!</p>
    <p><strong>Journal entry:</strong> {{.PostTitle}}</p>
    <p><strong>Comment:</strong> "{{.CommentBody}}"</p>
    <p>Click <a class="post-link" href="{{.PostURL}}">here</a> to read it.</p>
`

const digestBody = `
    <p>Hi @{{.Handle}}, here is what happened on your threads since your last {{.Period}} digest.</p>
    <ul>
    {{range .Items}}
        <li class="item">
            <strong>@{{.CommenterHandle}}</strong> on <a class="post-link" href="{{.PostURL}}">{{.PostTitle}}</a>
            {{if .HighlightedContent}}<div class="quote">"{{.HighlightedContent}}"</div>{{end}}
            <p>{{.CommentBody}}</p>
        </li>
    {{end}}
    </ul>
`
