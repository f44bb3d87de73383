package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
)

// WebsiteQuality is a coarse classification of a lead's web presence.
type WebsiteQuality string

const (
	QualityGood   WebsiteQuality = "Good"   // custom domain
	QualityDecent WebsiteQuality = "Decent" // generic platform page only
	QualityBad    WebsiteQuality = "Bad"    // no site found
)

// Valid reports whether q is one of the three known quality values.
func (q WebsiteQuality) Valid() bool {
	switch q {
	case QualityGood, QualityDecent, QualityBad:
		return true
	}
	return false
}

// Lead is a business entity with contact and quality metadata returned by
// the search. The JSON tags match the wire contract emitted by the model.
type Lead struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Address        string         `json:"address"`
	Rating         *float64       `json:"rating"`
	Phone          *string        `json:"phone"`
	Website        *string        `json:"website"`
	Email          *string        `json:"email"`
	Instagram      *string        `json:"instagram"`
	WhatsApp       *string        `json:"whatsapp"`
	GoogleMapsURI  *string        `json:"googleMapsUri"`
	WebsiteQuality WebsiteQuality `json:"websiteQuality"`
}

// Placeholder values substituted when the model omits a field.
const (
	PlaceholderName    = "Unknown Business"
	PlaceholderAddress = "No address found"
)

// LeadID derives a stable identifier from the normalized name and address,
// so the same underlying business hashes to the same ID across fetches.
func LeadID(name, address string) string {
	key := NormalizeName(name) + "|" + NormalizeName(address)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// NormalizeName case-folds and collapses whitespace for identity and
// de-duplication comparisons. Business names arrive in mixed scripts, so
// Unicode folding rather than ASCII lowercasing. Casers are stateful, so a
// fresh one per call.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}
