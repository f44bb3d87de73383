package leadsearch

import (
	"fmt"
	"strings"
)

const systemInstruction = `You are a lead-generation research assistant. You find real businesses using Google Maps and Google Search and report verified contact details. You reply with data only, never with commentary.`

// BoundExclusions returns the most recent bound entries of names. The prompt
// only ever carries this suffix, not the full history, to keep prompt size
// flat as a session accumulates results.
func BoundExclusions(names []string, bound int) []string {
	if bound <= 0 || len(names) <= bound {
		return names
	}
	return names[len(names)-bound:]
}

// buildPrompt composes the single free-form prompt for one generation call.
func buildPrompt(query, location string, count int, exclude []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Find %d businesses matching %q in %s.\n\n", count, query, location)

	if len(exclude) > 0 {
		b.WriteString("Do NOT include any of these businesses, they are already known:\n")
		for _, name := range exclude {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}

	b.WriteString(`For each business, look up its details on Google Maps, then search the web for its official website, email address, Instagram handle and WhatsApp number.

Classify each business's "websiteQuality":
- "Good": it has its own website on a custom domain
- "Decent": it only has a page on a generic platform (Facebook, Linktree, marketplace listing)
- "Bad": no website found at all

Respond with ONLY a JSON array, no prose before or after, where each element has exactly these fields:
{"name": string, "address": string, "rating": number|null, "phone": string|null, "website": string|null, "email": string|null, "instagram": string|null, "whatsapp": string|null, "googleMapsUri": string|null, "websiteQuality": "Good"|"Decent"|"Bad"}

Use null for anything you cannot find. Do not invent contact details.`)

	return b.String()
}
