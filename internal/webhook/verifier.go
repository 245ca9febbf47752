package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Verification failure classes. Handlers map all of them to 400; the
// distinction matters for logging and tests.
var (
	ErrMalformedHeader   = errors.New("malformed signature header")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrStaleTimestamp    = errors.New("signature timestamp outside tolerance")
)

// DefaultTolerance is how old a signed timestamp may be before the delivery
// is rejected as a possible replay.
const DefaultTolerance = 5 * time.Minute

// Event is a parsed webhook delivery.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// SessionObject is the checkout session embedded in a completed-payment event.
type SessionObject struct {
	ID            string            `json:"id"`
	CustomerEmail string            `json:"customer_email"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// Session decodes the event payload as a checkout session object.
func (e *Event) Session() (*SessionObject, error) {
	var s SessionObject
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &s, nil
}

// Verifier validates inbound webhook deliveries against the shared signing
// secret.
type Verifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTolerance overrides the timestamp freshness window. Zero disables the
// check entirely.
func WithTolerance(d time.Duration) Option {
	return func(v *Verifier) { v.tolerance = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a verifier with the default 5 minute tolerance.
func NewVerifier(secret string, opts ...Option) *Verifier {
	v := &Verifier{
		secret:    secret,
		tolerance: DefaultTolerance,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the signature header against the raw payload and returns the
// parsed event. The header carries comma-separated key=value pairs; the
// scheme signs "{t}.{payload}" with HMAC-SHA256 and publishes the lowercase
// hex digest as v1.
func (v *Verifier) Verify(payload []byte, sigHeader string) (*Event, error) {
	timestamp, signature, err := parseHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	if v.tolerance > 0 {
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric timestamp", ErrMalformedHeader)
		}
		age := v.now().Sub(time.Unix(ts, 0))
		if age > v.tolerance || age < -v.tolerance {
			return nil, ErrStaleTimestamp
		}
	}

	expected := ComputeSignature(payload, v.secret, timestamp)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrSignatureMismatch
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &event, nil
}

// parseHeader extracts the t and v1 values from the signature header.
func parseHeader(header string) (timestamp, signature string, err error) {
	for _, pair := range strings.Split(header, ",") {
		k, val, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp = val
		case "v1":
			signature = val
		}
	}
	if timestamp == "" || signature == "" {
		return "", "", ErrMalformedHeader
	}
	return timestamp, signature, nil
}

// ComputeSignature returns the lowercase hex HMAC-SHA256 of "{t}.{payload}".
func ComputeSignature(payload []byte, secret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign builds a valid signature header for the payload, signed at the given
// time. Used by tests and local tooling to fabricate deliveries.
func Sign(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", ts, ComputeSignature(payload, secret, ts))
}
