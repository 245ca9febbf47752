package catalog

import (
	"encoding/json"
	"strings"
)

// maxRawMessageLen bounds the fallback message when the error body has an
// unknown shape.
const maxRawMessageLen = 300

type apiErrorBody struct {
	Code    string          `json:"code"`
	Message json.RawMessage `json:"message"`
}

type nestedMessage struct {
	Info string `json:"info"`
	Data struct {
		SKUs     []string `json:"skus"`
		Products []string `json:"products"`
	} `json:"data"`
}

// ExtractMessage turns a raw catalog error body into a human-readable
// message. The API wraps its real message as a JSON-encoded string inside
// the `message` field; for the out-of-stock error code ER003 the affected
// SKUs are listed so the operator can act on them. Unknown shapes fall back
// to the truncated raw body.
func ExtractMessage(body string) string {
	var outer apiErrorBody
	if err := json.Unmarshal([]byte(body), &outer); err != nil {
		return truncate(body)
	}

	// message may be a bare string or a JSON-encoded object string.
	var msgText string
	if err := json.Unmarshal(outer.Message, &msgText); err != nil {
		msgText = string(outer.Message)
	}

	var nested nestedMessage
	if err := json.Unmarshal([]byte(msgText), &nested); err != nil || nested.Info == "" {
		if msgText != "" && msgText != "null" {
			return truncate(msgText)
		}
		return truncate(body)
	}

	skus := nested.Data.SKUs
	if len(skus) == 0 {
		skus = nested.Data.Products
	}

	if outer.Code == "ER003" && len(skus) > 0 {
		return nested.Info + " (SKUs: " + strings.Join(skus, ", ") + ")"
	}
	if len(skus) > 0 {
		return nested.Info + ": " + strings.Join(skus, ", ")
	}
	return nested.Info
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxRawMessageLen {
		return s[:maxRawMessageLen] + "..."
	}
	return s
}
