package audit

import "context"

type actorKey struct{}

// WithActor guarda en el contexto el usuario que origina la operación.
func WithActor(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom devuelve el usuario del contexto o "" (procesos sin usuario, CLI).
func ActorFrom(ctx context.Context) string {
	v, _ := ctx.Value(actorKey{}).(string)
	return v
}
