package webhook

import (
	"context"
	stderrors "errors"

	"github.com/hpungsan/hookcard/internal/errors"
)

// Dispatch validates endpoint and posts body to it unchanged.
// A rejected endpoint never reaches the transport. A non-2xx answer comes
// back as DISPATCH_FAILED carrying the upstream status and body verbatim.
func Dispatch(ctx context.Context, t Transport, endpoint string, body []byte) (Response, error) {
	endpoint, err := ValidateEndpoint(endpoint)
	if err != nil {
		return Response{}, err
	}

	resp, err := t.Post(ctx, endpoint, body)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
			return Response{}, errors.NewCancelled("send")
		}
		return Response{}, errors.NewDispatchFailed(err)
	}
	if !resp.OK() {
		return resp, errors.NewDispatchRejected(resp.Status, resp.Body)
	}
	return resp, nil
}
