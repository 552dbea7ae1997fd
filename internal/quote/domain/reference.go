package domain

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"time"
)

const (
	referencePrefix   = "QTE"
	referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	referenceSuffix   = 5
)

var referencePattern = regexp.MustCompile(`^QTE-\d{8}-[A-Z0-9]{5}$`)

// ReferenceGenerator produces a human-readable quote reference for the given day.
type ReferenceGenerator func(now time.Time) string

// NewReference returns QTE-YYYYMMDD-XXXXX with a random base36 suffix.
func NewReference(now time.Time) string {
	suffix := make([]byte, referenceSuffix)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return referencePrefix + "-" + now.UTC().Format("20060102") + "-" + string(suffix)
}

func IsValidReference(ref string) bool {
	return referencePattern.MatchString(ref)
}
