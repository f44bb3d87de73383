package leadsearch

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// rawLead mirrors the JSON array element schema the model is instructed to
// emit. Every field is optional in practice; mapLead fills the gaps.
type rawLead struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Rating         *float64 `json:"rating"`
	Phone          *string  `json:"phone"`
	Website        *string  `json:"website"`
	Email          *string  `json:"email"`
	Instagram      *string  `json:"instagram"`
	WhatsApp       *string  `json:"whatsapp"`
	GoogleMapsURI  *string  `json:"googleMapsUri"`
	WebsiteQuality string   `json:"websiteQuality"`
}

// ExtractLeads salvages a JSON lead array from free-form model output and
// maps it to normalized records. Malformed or missing JSON yields an empty
// slice, never an error: the caller treats an empty result as a soft failure
// and drives its retry ladder off it.
func ExtractLeads(text string) []model.Lead {
	payload := isolateArray(text)
	if payload == "" {
		return nil
	}

	var raws []rawLead
	if err := json.Unmarshal([]byte(payload), &raws); err != nil {
		zap.L().Debug("leadsearch: response array did not parse", zap.Error(err))
		return nil
	}

	leads := make([]model.Lead, 0, len(raws))
	for _, r := range raws {
		leads = append(leads, mapLead(r))
	}
	return leads
}

// isolateArray strips markdown code fences and returns the substring between
// the first '[' and the last ']', tolerating leading and trailing prose.
// Returns "" when no balanced bracket pair exists.
func isolateArray(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return cleaned[start : end+1]
}

// mapLead normalizes one raw element: placeholder name/address, quality
// derived from website presence when unspecified, stable content-keyed ID.
func mapLead(r rawLead) model.Lead {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = model.PlaceholderName
	}
	address := strings.TrimSpace(r.Address)
	if address == "" {
		address = model.PlaceholderAddress
	}

	quality := model.WebsiteQuality(r.WebsiteQuality)
	if !quality.Valid() {
		if r.Website != nil && strings.TrimSpace(*r.Website) != "" {
			quality = model.QualityGood
		} else {
			quality = model.QualityBad
		}
	}

	id := model.LeadID(name, address)
	if name == model.PlaceholderName && address == model.PlaceholderAddress {
		// Nothing content-stable to hash; fall back to a random ID so two
		// fully-anonymous rows don't collapse into one.
		id = uuid.New().String()
	}

	return model.Lead{
		ID:             id,
		Name:           name,
		Address:        address,
		Rating:         r.Rating,
		Phone:          emptyToNil(r.Phone),
		Website:        emptyToNil(r.Website),
		Email:          emptyToNil(r.Email),
		Instagram:      emptyToNil(r.Instagram),
		WhatsApp:       emptyToNil(r.WhatsApp),
		GoogleMapsURI:  emptyToNil(r.GoogleMapsURI),
		WebsiteQuality: quality,
	}
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
