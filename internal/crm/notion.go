// Package crm pushes captured leads into the Notion lead tracker.
package crm

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/notion"
)

// NotionSyncer upserts leads as pages in a Notion database keyed by the
// "Lead ID" rich text property.
type NotionSyncer struct {
	client notion.Client
	dbID   string
	retry  resilience.RetryConfig
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Created int
	Updated int
	Failed  int
}

// NewNotionSyncer creates a syncer targeting the given database.
func NewNotionSyncer(client notion.Client, dbID string) *NotionSyncer {
	return &NotionSyncer{
		client: client,
		dbID:   dbID,
		retry:  resilience.DefaultRetryConfig(),
	}
}

// Sync upserts all leads. Individual lead failures are logged and counted but
// do not abort the run; an error is returned only when every lead fails.
func (s *NotionSyncer) Sync(ctx context.Context, leads []model.Lead) (SyncResult, error) {
	var result SyncResult

	for _, lead := range leads {
		if err := ctx.Err(); err != nil {
			return result, eris.Wrap(err, "crm: sync cancelled")
		}

		created, err := s.upsert(ctx, lead)
		if err != nil {
			result.Failed++
			zap.L().Warn("crm: lead sync failed",
				zap.String("lead_id", lead.ID),
				zap.String("name", lead.Name),
				zap.Error(err),
			)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	if len(leads) > 0 && result.Failed == len(leads) {
		return result, eris.Errorf("crm: all %d leads failed to sync", len(leads))
	}
	return result, nil
}

// upsert creates or updates the page for one lead. Returns true when a new
// page was created.
func (s *NotionSyncer) upsert(ctx context.Context, lead model.Lead) (bool, error) {
	existing, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*notionapi.Page, error) {
		return notion.FindPageByLeadID(ctx, s.client, s.dbID, lead.ID)
	})
	if err != nil {
		return false, eris.Wrap(err, "crm: lookup lead page")
	}

	props := leadProperties(lead)

	if existing != nil {
		err := resilience.Do(ctx, s.retry, func(ctx context.Context) error {
			_, err := s.client.UpdatePage(ctx, string(existing.ID), &notionapi.PageUpdateRequest{
				Properties: props,
			})
			return err
		})
		if err != nil {
			return false, eris.Wrap(err, "crm: update lead page")
		}
		return false, nil
	}

	err = resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(s.dbID),
			},
			Properties: props,
		})
		return err
	})
	if err != nil {
		return false, eris.Wrap(err, "crm: create lead page")
	}
	return true, nil
}

// Prune archives tracker pages whose Lead ID is absent from keep. Pages
// without a Lead ID property are left alone. Returns the number of pages
// archived.
func (s *NotionSyncer) Prune(ctx context.Context, keep []model.Lead) (int, error) {
	known := make(map[string]struct{}, len(keep))
	for _, lead := range keep {
		known[lead.ID] = struct{}{}
	}

	pages, err := notion.QueryAll(ctx, s.client, s.dbID, nil)
	if err != nil {
		return 0, eris.Wrap(err, "crm: list tracker pages")
	}

	archived := 0
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return archived, eris.Wrap(err, "crm: prune cancelled")
		}

		leadID := pageLeadID(page)
		if leadID == "" {
			continue
		}
		if _, ok := known[leadID]; ok {
			continue
		}

		err := resilience.Do(ctx, s.retry, func(ctx context.Context) error {
			_, err := s.client.UpdatePage(ctx, string(page.ID), &notionapi.PageUpdateRequest{
				Properties: notionapi.Properties{},
				Archived:   true,
			})
			return err
		})
		if err != nil {
			return archived, eris.Wrapf(err, "crm: archive page %s", page.ID)
		}
		zap.L().Info("crm: archived stale lead page",
			zap.String("lead_id", leadID),
			zap.String("page_id", string(page.ID)),
		)
		archived++
	}
	return archived, nil
}

// pageLeadID reads the "Lead ID" rich text value off a tracker page.
func pageLeadID(page notionapi.Page) string {
	prop, ok := page.Properties["Lead ID"]
	if !ok {
		return ""
	}
	rt, ok := prop.(*notionapi.RichTextProperty)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, t := range rt.RichText {
		b.WriteString(t.PlainText)
	}
	return b.String()
}

func leadProperties(lead model.Lead) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: richText(lead.Name),
		},
		"Lead ID": notionapi.RichTextProperty{
			RichText: richText(lead.ID),
		},
		"Address": notionapi.RichTextProperty{
			RichText: richText(lead.Address),
		},
		"Website Quality": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(lead.WebsiteQuality),
			},
		},
	}

	if lead.Rating != nil {
		props["Rating"] = notionapi.NumberProperty{Number: *lead.Rating}
	}
	if lead.Phone != nil {
		props["Phone"] = notionapi.PhoneNumberProperty{PhoneNumber: *lead.Phone}
	}
	if lead.Website != nil {
		props["Website"] = notionapi.URLProperty{URL: *lead.Website}
	}
	if lead.Email != nil {
		props["Email"] = notionapi.EmailProperty{Email: *lead.Email}
	}
	if lead.Instagram != nil {
		props["Instagram"] = notionapi.RichTextProperty{RichText: richText(*lead.Instagram)}
	}
	if lead.WhatsApp != nil {
		props["WhatsApp"] = notionapi.RichTextProperty{RichText: richText(*lead.WhatsApp)}
	}
	if lead.GoogleMapsURI != nil {
		props["Maps Link"] = notionapi.URLProperty{URL: *lead.GoogleMapsURI}
	}

	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}}
}
