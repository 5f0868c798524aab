// Package cli provides the command-line trigger surface of encuestas.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/law-makers/encuestas/internal/app"
)

// ctxKey is used for storing the application in the command context
type ctxKey string

const appKey ctxKey = "app"

// SetApp stores the Application in the command's context. The value is
// derived from the root context, replacing any application left by an
// earlier execution of the same command tree.
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	ctx := cmd.Root().Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey, a))
}

// GetApp retrieves the Application from the command's context
func GetApp(cmd *cobra.Command) *app.Application {
	if cmd == nil || cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(appKey).(*app.Application)
	return a
}
