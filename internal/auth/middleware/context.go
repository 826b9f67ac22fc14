package auth

import "context"

// Principal is the authenticated caller as read from the bearer token.
type Principal struct {
	Subject string
	Role    string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// WithSubject stores a principal carrying only a subject.
func WithSubject(ctx context.Context, sub string) context.Context {
	p, _ := PrincipalFromContext(ctx)
	p.Subject = sub
	return WithPrincipal(ctx, p)
}

// SubjectFromContext returns "" for anonymous requests.
func SubjectFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Subject
}
