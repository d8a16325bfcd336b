package scout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/extract"
	"github.com/fourthplaces/rootsignal/pkg/fetch"
	"github.com/fourthplaces/rootsignal/pkg/graph"
	"github.com/fourthplaces/rootsignal/pkg/promote"
)

// kindFor maps the extractor's signal_type discriminator to the graph's
// SignalKind, the same enum under two names because pkg/extract's schema
// predates graph's node-label discriminator and the two packages must not
// import each other just to share five string constants.
func kindFor(t extract.SignalType) graph.SignalKind {
	switch t {
	case extract.TypeGathering:
		return graph.SignalGathering
	case extract.TypeAid:
		return graph.SignalAid
	case extract.TypeNeed:
		return graph.SignalNeed
	case extract.TypeNotice:
		return graph.SignalNotice
	case extract.TypeTension:
		return graph.SignalTension
	default:
		return ""
	}
}

func eventTypeFor(kind graph.SignalKind) eventstore.EventType {
	switch kind {
	case graph.SignalGathering:
		return eventstore.EventGatheringDiscovered
	case graph.SignalAid:
		return eventstore.EventAidDiscovered
	case graph.SignalNeed:
		return eventstore.EventNeedDiscovered
	case graph.SignalNotice:
		return eventstore.EventNoticeDiscovered
	case graph.SignalTension:
		return eventstore.EventTensionDiscovered
	default:
		return ""
	}
}

// processSource runs the 11-step per-source pipeline and returns this
// source's contribution to the run's Result. It never appends events
// itself, and it never errors for ordinary fetch/extract failures — those
// are logged and the source is skipped this run, since one bad source must
// not abort the batch.
func (run *runContext) processSource(ctx context.Context, src SourceCandidate) Result {
	log := slog.With("source", src.CanonicalKey, "source_type", src.SourceType)
	var result Result
	now := run.now()

	page, socialPosts, err := run.fetchSource(ctx, src)
	var seenErr *fetch.AlreadySeenErr
	if errors.As(err, &seenErr) {
		run.recordFreshness(ctx, &result, src, seenErr.Page.URL, now)
		run.collectLinks(&result, src, seenErr.Page.OutboundLinks)
		run.recordScrape(&result, src, 0, now)
		return result
	}
	if err != nil {
		log.Warn("scout: fetch failed", "error", err)
		return result
	}

	var markdown, sourceURL string
	var outboundLinks []string
	switch {
	case page != nil:
		markdown, sourceURL, outboundLinks = page.Markdown, page.URL, page.OutboundLinks
	case len(socialPosts) > 0:
		sourceURL = src.URL
		for _, p := range socialPosts {
			markdown += p.Text + "\n\n"
			outboundLinks = append(outboundLinks, p.Mentions...)
		}
	default:
		run.recordScrape(&result, src, 0, now)
		return result
	}

	signals, extracted := run.extractSignals(ctx, src, sourceURL, markdown)
	if !extracted {
		run.recordScrape(&result, src, 0, now)
		run.collectLinks(&result, src, outboundLinks)
		return result
	}

	seenThisSource := make(map[string]string) // "kind:title" -> signal_id

	for _, sig := range signals {
		kind := kindFor(sig.SignalType)
		if kind == "" {
			continue
		}

		contentDate, dropped := run.checkContentDate(&result, src, sig, now)
		if dropped {
			continue
		}

		dedupeKey := string(kind) + ":" + normalizeTitle(sig.Title)
		if existingID, ok := seenThisSource[dedupeKey]; ok {
			result.Freshness = append(result.Freshness, eventstore.FreshnessConfirmed{
				SignalID: existingID, SourceURL: sourceURL, ConfirmedAt: now,
			})
			continue
		}

		signalID := uuid.NewString()
		base := run.buildSignalBase(signalID, sig, sourceURL, contentDate, now)
		vectorText := fmt.Sprintf("%s %s", sig.Title, sig.Summary)
		embedding, err := run.embedder.Embed(ctx, []string{vectorText})
		if err != nil {
			log.Warn("scout: embed failed, keeping signal unembedded", "title", sig.Title, "error", err)
		} else if len(embedding) == 1 {
			base.Embedding = embedding[0]
		}

		match := run.corpus.findOrAdd(kind, liveSignal{SignalID: signalID, SourceURL: sourceURL, Title: sig.Title, Embedding: base.Embedding}, run.cfg.CorroborationThreshold)
		if match.matched {
			if match.entry.SourceURL == sourceURL {
				result.Freshness = append(result.Freshness, eventstore.FreshnessConfirmed{
					SignalID: match.entry.SignalID, SourceURL: sourceURL, ConfirmedAt: now,
				})
			} else {
				result.Corroborated = append(result.Corroborated, eventstore.ObservationCorroborated{
					SignalID: match.entry.SignalID, NewCorroborationCount: match.newCorroborationCount, ConfirmedAt: now,
				})
			}
			result.Citations = append(result.Citations, run.buildCitation(match.entry.SignalID, sourceURL, src.SourceType, markdown, now))
			continue
		}

		seenThisSource[dedupeKey] = signalID
		result.Discovered = append(result.Discovered, DiscoveredSignal{
			Kind: kind, EventType: eventTypeFor(kind), Payload: run.buildDiscoveredPayload(kind, sig, base),
		})
		result.Citations = append(result.Citations, run.buildCitation(signalID, sourceURL, src.SourceType, markdown, now))
	}

	// Social-only signal gate (step 11): a social source that yielded no
	// signals contributes no outbound links either, to avoid treating a
	// noisy feed as a link-discovery engine.
	if src.SourceType != "social" || len(result.Discovered) > 0 {
		run.collectLinks(&result, src, outboundLinks)
	}

	result.ScrapeRecords = append(result.ScrapeRecords, eventstore.SourceScrapeRecorded{
		CanonicalKey: src.CanonicalKey, SignalsProduced: len(result.Discovered), ScrapedAt: now,
	})
	result.SourcesRun = 1
	return result
}

func (run *runContext) fetchSource(ctx context.Context, src SourceCandidate) (*fetch.ScrapedPage, []fetch.SocialPost, error) {
	if src.SourceType == "social" {
		posts, err := run.fetcher.FetchSocial(ctx, src.SourceType, src.URL)
		return nil, posts, err
	}
	value := src.URL
	if src.SourceType == "web_query" {
		value = src.CanonicalValue
	}
	page, err := run.fetcher.Fetch(ctx, src.SourceType, value)
	return page, nil, err
}

func (run *runContext) extractSignals(ctx context.Context, src SourceCandidate, sourceURL, markdown string) ([]extract.Signal, bool) {
	if !run.budget.take() {
		slog.Warn("scout: llm budget exhausted, skipping extraction", "source", src.CanonicalKey)
		return nil, false
	}
	signals, err := run.extractor.Extract(ctx, sourceURL, markdown)
	if err != nil {
		slog.Warn("scout: extraction failed", "source", src.CanonicalKey, "error", err)
		return nil, false
	}
	return signals, true
}

// checkContentDate applies spec.md §4.3's content-date filter: a signal with
// no parseable content_date, or one old enough to fail the heuristic age
// check, is dropped rather than discovered.
func (run *runContext) checkContentDate(result *Result, src SourceCandidate, sig extract.Signal, now time.Time) (*time.Time, bool) {
	if sig.ContentDate == nil {
		result.DroppedNoDate = append(result.DroppedNoDate, eventstore.SignalDroppedNoDate{
			SourceURL: src.URL, Title: sig.Title,
		})
		return nil, true
	}
	maxAge := time.Duration(run.cfg.ContentDateMaxAgeDays) * 24 * time.Hour
	if now.Sub(*sig.ContentDate) > maxAge {
		result.Rejected = append(result.Rejected, eventstore.SignalRejected{
			SourceURL: src.URL, Title: sig.Title, Reason: "content_date older than content_date_max_age_days",
		})
		return nil, true
	}
	return sig.ContentDate, false
}

func (run *runContext) recordFreshness(ctx context.Context, result *Result, src SourceCandidate, sourceURL string, now time.Time) {
	ids, err := run.reader.SignalIDsForSourceURL(ctx, sourceURL)
	if err != nil {
		slog.Warn("scout: freshness lookup failed", "source", src.CanonicalKey, "error", err)
		return
	}
	for _, id := range ids {
		result.Freshness = append(result.Freshness, eventstore.FreshnessConfirmed{
			SignalID: id, SourceURL: sourceURL, ConfirmedAt: now,
		})
	}
}

func (run *runContext) recordScrape(result *Result, src SourceCandidate, produced int, now time.Time) {
	result.ScrapeRecords = append(result.ScrapeRecords, eventstore.SourceScrapeRecorded{
		CanonicalKey: src.CanonicalKey, SignalsProduced: produced, ScrapedAt: now,
	})
	result.SourcesRun = 1
}

func (run *runContext) collectLinks(result *Result, src SourceCandidate, links []string) {
	for _, l := range links {
		result.proposed = append(result.proposed, promote.ProposedLink{URL: l, ReferringSourceKey: src.CanonicalKey})
	}
}

func (run *runContext) buildCitation(signalID, sourceURL, sourceType, content string, now time.Time) eventstore.CitationRecorded {
	channel := eventstore.ChannelPress
	if sourceType == "social" {
		channel = eventstore.ChannelSocial
	}
	return eventstore.CitationRecorded{
		CitationID: uuid.NewString(), SignalID: signalID, SourceURL: sourceURL,
		RetrievedAt: now, ContentHash: fetch.ContentHash(content), ChannelType: channel,
	}
}

func (run *runContext) buildSignalBase(signalID string, sig extract.Signal, sourceURL string, contentDate *time.Time, now time.Time) eventstore.SignalBase {
	base := eventstore.SignalBase{
		SignalID:        signalID,
		Title:           sig.Title,
		Summary:         sig.Summary,
		Sensitivity:     eventstore.Sensitivity(sig.Sensitivity),
		SourceURL:       sourceURL,
		ExtractedAt:     now,
		ContentDate:     contentDate,
		ImpliedQueries:  sig.ImpliedQueries,
		MentionedActors: sig.MentionedActors,
		AuthorActor:     sig.AuthorActor,
		Tags:            sig.Tags,
	}
	if sig.Latitude != nil || sig.Longitude != nil || sig.LocationName != "" {
		base.Location = &eventstore.Location{
			Lat: sig.Latitude, Lng: sig.Longitude,
			Precision: eventstore.GeoPrecision(sig.GeoPrecision), Name: sig.LocationName,
		}
	}
	for _, r := range sig.Resources {
		base.Resources = append(base.Resources, eventstore.ResourceRef{
			Slug: r.Slug, Role: r.Role, Confidence: r.Confidence, Context: r.Context,
		})
	}
	return base
}

func (run *runContext) buildDiscoveredPayload(kind graph.SignalKind, sig extract.Signal, base eventstore.SignalBase) any {
	switch kind {
	case graph.SignalGathering:
		var sched *eventstore.Schedule
		if sig.StartsAt != nil || sig.EndsAt != nil {
			sched = &eventstore.Schedule{StartsAt: sig.StartsAt, EndsAt: sig.EndsAt, IsRecurring: sig.IsRecurring}
		}
		return eventstore.GatheringDiscovered{SignalBase: base, Schedule: sched, Organizer: sig.Organizer, ActionURL: sig.ActionURL}
	case graph.SignalAid:
		return eventstore.AidDiscovered{SignalBase: base, Availability: sig.Availability, IsOngoing: sig.IsOngoing}
	case graph.SignalNeed:
		return eventstore.NeedDiscovered{SignalBase: base, Urgency: sig.Urgency, WhatNeeded: sig.WhatNeeded}
	case graph.SignalNotice:
		return eventstore.NoticeDiscovered{SignalBase: base, Category: sig.Category, EffectiveDate: sig.EffectiveDate, SourceAuthority: sig.SourceAuthority}
	case graph.SignalTension:
		return eventstore.TensionDiscovered{SignalBase: base, Severity: sig.Severity, Goal: sig.Goal, WhatWouldHelp: sig.WhatWouldHelp}
	default:
		return nil
	}
}

func normalizeTitle(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		if r >= 'A' && r <= 'Z' {
			r = r + ('a' - 'A')
		}
		out = append(out, r)
	}
	return string(out)
}
