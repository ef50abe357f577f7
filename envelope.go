package go_wish

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stremovskyy/go-wish/internal/httpclient"
	"github.com/stremovskyy/go-wish/internal/jsonutil"
)

// Envelope is the top-level JSON object of every Wish API response.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`

	// Raw is the undecoded response body.
	Raw []byte `json:"-"`
}

// DecodeData decodes Data into generic values, keeping numbers as json.Number.
// A missing or null data field decodes to nil.
func (e *Envelope) DecodeData() (any, error) {
	if e == nil || len(e.Data) == 0 {
		return nil, nil
	}
	var v any
	if err := jsonutil.Unmarshal(e.Data, &v); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return v, nil
}

// DecodeDataInto decodes Data into out.
func (e *Envelope) DecodeDataInto(out any) error {
	if e == nil || len(e.Data) == 0 {
		return errors.New("envelope has no data")
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

type wireEnvelope struct {
	Code    *json.Number    `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func parseEnvelope(raw []byte) (*Envelope, error) {
	var w wireEnvelope
	if err := jsonutil.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if w.Code == nil {
		return nil, errors.New("envelope has no code")
	}
	code, err := w.Code.Int64()
	if err != nil {
		return nil, fmt.Errorf("envelope code %q is not an integer", w.Code.String())
	}
	env := &Envelope{Code: int(code), Message: w.Message, Data: w.Data, Raw: raw}
	if string(env.Data) == "null" {
		env.Data = nil
	}
	return env, nil
}

// handleResponse maps the outcome of a request to an envelope or a typed error.
func handleResponse(resp *httpclient.Response, err error) (*Envelope, error) {
	if err != nil {
		var hs *httpclient.HTTPStatusError
		if errors.As(err, &hs) {
			httpErr := &HTTPError{StatusCode: hs.StatusCode, Body: hs.Body, Err: hs}
			if env, perr := parseEnvelope(hs.Body); perr == nil && env.Code != 0 {
				httpErr.Err = &APIError{Code: env.Code, Message: env.Message, Body: hs.Body}
			}
			return nil, httpErr
		}
		return nil, &HTTPError{Err: err}
	}
	if resp == nil {
		return nil, &ServerError{Err: errors.New("empty response")}
	}

	env, err := parseEnvelope(resp.Body)
	if err != nil {
		return nil, &ServerError{Body: resp.Body, Err: err}
	}
	if env.Code != 0 {
		return nil, &APIError{Code: env.Code, Message: env.Message, Body: resp.Body}
	}
	return env, nil
}
