// Package util provides small shared helpers.
package util

import (
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// GenUUID generates a UUID v4 string, used as the stable public id of
// an event.
func GenUUID() string {
	return uuid.NewString()
}

// GenShortUID generates a short, URL-safe unique id, used for lightweight
// records such as availability blocks.
func GenShortUID() string {
	return shortuuid.New()
}
