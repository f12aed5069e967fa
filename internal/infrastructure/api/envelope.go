package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/amishe1/lubex-bot/internal/domain/shared"
)

// reasonFields are checked in order when extracting a rejection reason
var reasonFields = []string{"reason", "error", "message"}

// envelope is the {ok, ...} body returned by the order and admin APIs
type envelope struct {
	OK      bool
	OrderID string
	Reason  string
	Raw     []byte
}

// parseEnvelope decodes an {ok: bool, ...} object. A body that is not a JSON
// object, or lacks a boolean "ok", returns hasOK=false.
func parseEnvelope(body []byte) (env envelope, hasOK bool, err error) {
	env.Raw = body

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return env, false, fmt.Errorf("decoding response: %w", err)
	}
	if fields == nil {
		return env, false, fmt.Errorf("decoding response: not an object")
	}

	env.Reason = extractReason(fields, body)

	rawOK, present := fields["ok"]
	if !present {
		return env, false, nil
	}
	if err := json.Unmarshal(rawOK, &env.OK); err != nil {
		return env, false, fmt.Errorf("decoding response: ok is not a boolean")
	}

	if rawID, present := fields["orderId"]; present {
		env.OrderID = scalarString(rawID)
	}
	return env, true, nil
}

// extractReason returns the first string reason field, the "message" of a
// nested error object, or the raw body
func extractReason(fields map[string]json.RawMessage, body []byte) string {
	for _, key := range reasonFields {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return string(bytes.TrimSpace(body))
}

// scalarString renders a JSON string or number as text
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

// classify turns a response into nil (ok:true), an ApplicationError
// (ok:false, or a non-2xx JSON error) or a NetworkError (malformed).
func classify(resp *Response) (envelope, error) {
	env, hasOK, err := parseEnvelope(resp.Body)
	switch {
	case err != nil:
		if !resp.OK() {
			return env, shared.NewNetworkError(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
		return env, shared.NewNetworkError(err)
	case hasOK && env.OK:
		if !resp.OK() {
			return env, shared.NewNetworkError(fmt.Errorf("unexpected status %d with ok response", resp.StatusCode))
		}
		return env, nil
	case hasOK && !env.OK:
		return env, shared.NewApplicationError(env.Reason, resp.Body)
	case !resp.OK():
		return env, shared.NewApplicationError(env.Reason, resp.Body)
	default:
		return env, shared.NewNetworkError(fmt.Errorf("response has no ok field"))
	}
}
