package inngest

import (
	"context"
	"net/http"
)

type InngestClient interface {
	Serve() http.Handler
	// RequestSweep enqueues one run of task through Inngest.
	RequestSweep(ctx context.Context, task string, dryRun bool) error
}
