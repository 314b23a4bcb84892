package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size used when the caller does not pass one.
	DefaultLimit = 25
	// MaxLimit caps the rows any listing endpoint will return per page.
	MaxLimit = 100
)

// Params carries the cursor pagination inputs parsed from a request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the decoded keyset position. Listing queries order by
// (created_at DESC, id DESC), so both components are needed to resume.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// MarshalJSON renders the cursor as its opaque token so API payloads hand
// clients exactly what the next request's cursor parameter expects.
func (c Cursor) MarshalJSON() ([]byte, error) {
	return []byte(`"` + EncodeCursor(c) + `"`), nil
}

// UnmarshalJSON accepts the opaque token form.
func (c *Cursor) UnmarshalJSON(data []byte) error {
	token := strings.Trim(string(data), `"`)
	parsed, err := ParseCursor(token)
	if err != nil {
		return err
	}
	if parsed != nil {
		*c = *parsed
	}
	return nil
}

// NormalizeLimit clamps a requested limit into [1, MaxLimit], falling back
// to DefaultLimit when unset.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer requests one extra row so repositories can tell whether
// another page exists without a second count query.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor serializes a keyset position into an opaque token.
func EncodeCursor(cursor Cursor) string {
	raw := cursor.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + cursor.ID.String()
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a token produced by EncodeCursor. Empty input yields
// a nil cursor, meaning start from the first page.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{CreatedAt: createdAt, ID: id}, nil
}
