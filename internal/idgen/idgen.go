// Package idgen provides short, URL-safe unique ID generation backed by nanoid
// for widgets and ULIDs for backlog items.
package idgen

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/oklog/ulid/v2"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of random characters generated.
var Length = 8

// WidgetID returns "<kind>-<unix ms>-<random>". The timestamp keeps ids
// roughly creation-ordered; the random suffix keeps two ids minted in the same
// millisecond apart.
func WidgetID(kind string, now time.Time) (string, error) {
	suffix, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return kind + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix, nil
}

// ItemID returns a ULID for a backlog item created at now.
func ItemID(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id.String(), nil
}
