package docengine

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/docshare/internal/common"
)

// envelope is the response shape of every document engine endpoint:
// {"data": {...}} on success, {"error": {"reason": "..."}} on failure.
type envelope[T any] struct {
	Data  *T        `json:"data"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Reason string `json:"reason"`
}

// RemoteError is the unwrapped error.reason of a failure envelope.
type RemoteError struct {
	Reason string
}

func (e *RemoteError) Error() string {
	return e.Reason
}

// StatusError is a non-2xx answer whose body carried no error envelope.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "unexpected status " + e.Status
}

// decodeEnvelope parses body once into either the payload or a RemoteError.
// Bodies with neither key are a protocol violation.
func decodeEnvelope[T any](body []byte) (*T, error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrProtocol, err)
	}

	switch {
	case env.Error != nil:
		return nil, &RemoteError{Reason: env.Error.Reason}
	case env.Data != nil:
		return env.Data, nil
	default:
		return nil, common.ErrProtocol
	}
}
