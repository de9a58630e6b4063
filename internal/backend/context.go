package backend

import (
	"context"
	"net/http"

	"github.com/baderboshnak/golden-shen/internal/domain"
)

func withUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func userFrom(r *http.Request) domain.User {
	u, _ := r.Context().Value(userKey).(domain.User)
	return u
}
