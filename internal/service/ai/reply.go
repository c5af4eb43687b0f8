package ai

import "errors"

const (
	statusFailurePrefix    = "⚠️ Error contacting model: "
	transportFailurePrefix = "⚠️ Model error: "
)

// Reply is the outcome of one gateway query. Failures are kept as Err so callers
// can branch, while String flattens both cases to conversation text.
type Reply struct {
	Text string
	Err  error
}

// OK reports whether the model answered successfully.
func (r Reply) OK() bool {
	return r.Err == nil
}

// String returns the text stored as the bot turn. Failed replies carry a
// warning marker followed by the server body or the transport error.
func (r Reply) String() string {
	if r.Err == nil {
		return r.Text
	}
	var statusErr *StatusError
	if errors.As(r.Err, &statusErr) {
		return statusFailurePrefix + statusErr.Body
	}
	return transportFailurePrefix + r.Err.Error()
}
