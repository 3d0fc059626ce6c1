package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/urlprobe/internal/contracts"
	"github.com/mozilla-ai/urlprobe/internal/errors"
)

const (
	MessageReachable   = "✅ Valid website URL"
	MessageUnreachable = "❌ Invalid or unreachable website URL"
	MessageMissingURL  = "Missing url field"
)

// CheckURLRequest is the incoming request for POST /check-url.
// Body is a pointer so a request without one reaches the handler and is reported as a missing URL.
type CheckURLRequest struct {
	Body *CheckURLRequestBody
}

// CheckURLRequestBody carries the candidate URL.
// The field is optional in the schema so a missing URL is reported by the handler with a 400.
// Unknown properties are ignored.
type CheckURLRequestBody struct {
	_ struct{} `additionalProperties:"true"`

	URL string `doc:"Website URL to check, the scheme is optional" example:"example.com" json:"url,omitempty"`
}

// CheckURLResponse is the response for POST /check-url.
type CheckURLResponse struct {
	Body CheckURLResponseBody
}

// CheckURLResponseBody holds the human-readable verdict.
type CheckURLResponseBody struct {
	Message string `doc:"Human readable reachability verdict" example:"✅ Valid website URL" json:"message"`
}

// RegisterCheckRoutes sets up the reachability check endpoint.
func RegisterCheckRoutes(routerAPI huma.API, checker contracts.ReachabilityChecker, path string) {
	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "checkURL",
			Method:      http.MethodPost,
			Path:        path,
			Summary:     "Check whether a website URL is reachable",
			Description: "An unreachable URL is a normal outcome and is reported with a 200 response. " +
				"A missing or blank url is a 400, a url that is not a JSON string is rejected with a 422.",
			Tags:        []string{"Reachability"},
		},
		func(ctx context.Context, input *CheckURLRequest) (*CheckURLResponse, error) {
			var rawURL string
			if input.Body != nil {
				rawURL = input.Body.URL
			}
			return handleCheckURL(ctx, checker, rawURL)
		},
	)
}

// handleCheckURL is the handler for checking the reachability of a single URL.
func handleCheckURL(
	ctx context.Context,
	checker contracts.ReachabilityChecker,
	rawURL string,
) (*CheckURLResponse, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, NewErrorResponse(
			http.StatusBadRequest,
			MessageMissingURL,
			fmt.Errorf("%w: %w", errors.ErrBadRequest, errors.ErrMissingURL),
		)
	}

	// The probe is bounded by the checker's own timeouts and runs to completion even if the client goes away.
	reachable := checker.IsReachable(context.WithoutCancel(ctx), rawURL)

	resp := &CheckURLResponse{}
	resp.Body.Message = MessageUnreachable
	if reachable {
		resp.Body.Message = MessageReachable
	}

	return resp, nil
}
