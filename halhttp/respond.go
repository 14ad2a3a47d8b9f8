package halhttp

import (
	"encoding/json"
	"net/http"

	"github.com/halware/halcommon/hal"
)

const (
	// ContentTypeHAL is the media type stamped onto every response body
	// this package produces.
	ContentTypeHAL = "application/hal+json"
)

// Respond finalizes a HAL response: the request's resource tree is merged
// with the supplied body fields, serialized as HAL+JSON, and written with
// the given status code.  A request that was never decorated gets a bare
// resource holding only the body.
//
// The body, when non-nil, must marshal to a JSON object.
func Respond(response http.ResponseWriter, request *http.Request, code int, body interface{}) error {
	resource, ok := FromContext(request.Context())
	if !ok {
		resource = hal.New(hal.Options{})
	}

	if body != nil {
		resource.SetBody(body)
	}

	data, err := json.Marshal(resource)
	if err != nil {
		return err
	}

	response.Header().Set("Content-Type", ContentTypeHAL)
	response.WriteHeader(code)

	_, err = response.Write(data)
	return err
}
