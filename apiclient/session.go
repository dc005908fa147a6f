package apiclient

import "context"

// Session is the credential holder for one signed-in browser. The client reads
// the tokens before every request and writes back the access token after a
// successful refresh.
type Session interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(ctx context.Context, token string) error
	// Clear removes both tokens and any cached user profile.
	Clear(ctx context.Context) error
}

// noSession is used when a client is built without a session, e.g. for public
// catalog pages.
type noSession struct{}

func (noSession) AccessToken() string { return "" }
func (noSession) RefreshToken() string { return "" }
func (noSession) SetAccessToken(context.Context, string) error { return nil }
func (noSession) Clear(context.Context) error { return nil }
