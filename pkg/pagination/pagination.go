package pagination

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size for candidate searches and job lists when
	// the caller sends none.
	DefaultLimit = 25
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 100
)

// ErrForeignCursor reports a cursor issued for another listing or filter.
var ErrForeignCursor = errors.New("cursor belongs to a different listing")

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Listing names the result set a cursor walks. Filter is the normalized
// search term or status; a cursor handed out for one filter cannot resume a
// different one.
type Listing struct {
	Name   string
	Filter string
}

func (l Listing) fingerprint() string {
	sum := sha256.Sum256([]byte(l.Name + "\x00" + strings.ToLower(strings.TrimSpace(l.Filter))))
	return hex.EncodeToString(sum[:4])
}

// Cursor is the keyset position of the last row served: rows are ordered by
// created_at then id, both descending.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor renders a URL-safe token, so it can travel in ?cursor= as is.
func EncodeCursor(listing Listing, cursor Cursor) string {
	payload := strings.Join([]string{
		listing.fingerprint(),
		strconv.FormatInt(cursor.CreatedAt.UnixNano(), 10),
		cursor.ID.String(),
	}, ".")
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a token minted by EncodeCursor for the same listing. A
// blank value is the first page and yields nil.
func ParseCursor(listing Listing, value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.Split(string(decoded), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid cursor format")
	}
	if parts[0] != listing.fingerprint() {
		return nil, ErrForeignCursor
	}

	nanos, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: id}, nil
}

// Trim drops the look-ahead row fetched with LimitWithBuffer and returns the
// cursor for the next page, or "" on the last page.
func Trim[T any](rows []T, limit int, listing Listing, cursorOf func(T) Cursor) ([]T, string) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, ""
	}
	page := rows[:limit]
	return page, EncodeCursor(listing, cursorOf(page[len(page)-1]))
}
