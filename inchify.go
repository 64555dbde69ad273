// Package inchify converts metric dimension callouts in PDF engineering
// drawings to inches, rewriting each value in place.
package inchify

import (
	"context"
	"fmt"

	"github.com/fabtools/inchify/dimension"
	"github.com/fabtools/inchify/document"
	"github.com/fabtools/inchify/editor"
	"github.com/fabtools/inchify/extractor"
	"github.com/fabtools/inchify/observability"
	"github.com/fabtools/inchify/report"
	"github.com/fabtools/inchify/scripting"
)

// Options configures a Processor. Zero values select the defaults:
// gap threshold 3.0, no rule hooks, no report, no logging.
type Options struct {
	GapThreshold float64
	Rules        *scripting.Rules
	Report       *report.Report
	Logger       observability.Logger
}

// Processor runs the scan-convert-substitute pipeline over a document,
// one page at a time, in document order.
type Processor struct {
	log    observability.Logger
	gap    float64
	rules  *scripting.Rules
	report *report.Report
}

// NewProcessor returns a Processor with the given options.
func NewProcessor(opts Options) *Processor {
	p := &Processor{
		log:    opts.Logger,
		gap:    opts.GapThreshold,
		rules:  opts.Rules,
		report: opts.Report,
	}
	if p.log == nil {
		p.log = observability.NopLogger{}
	}
	if p.gap <= 0 {
		p.gap = dimension.DefaultGapThreshold
	}
	return p
}

// ProcessFile opens inPath, converts every eligible metric callout, and
// saves the result to outPath. The input file is not modified.
func (p *Processor) ProcessFile(ctx context.Context, inPath, outPath string) error {
	p.log.Info("opening document", observability.String("path", inPath))
	doc, err := document.Open(inPath)
	if err != nil {
		return err
	}
	pages := doc.Pages()
	p.log.Info("document opened", observability.Int("pages", len(pages)))
	if p.report != nil {
		p.report.Pages = len(pages)
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.processPage(ctx, page); err != nil {
			return err
		}
	}

	if err := doc.Save(outPath); err != nil {
		return err
	}
	p.log.Info("conversion complete", observability.String("output", outPath))
	return nil
}

// processPage scans one page, collects its replacements, then applies
// them in two phases: erase everything first, reinsert afterwards. The
// page is never re-scanned once erasing begins.
func (p *Processor) processPage(ctx context.Context, page *document.Page) error {
	log := p.log.With(observability.Int("page", page.Number()))
	log.Info("processing page")

	text, err := extractor.Extract(page)
	if err != nil {
		return fmt.Errorf("extract page %d: %w", page.Number(), err)
	}

	var replacements []dimension.Replacement
	for _, line := range text.Lines() {
		for _, group := range dimension.GroupSpans(line.Spans, p.gap) {
			log.Info("grouped numeric text",
				observability.String("token", group.Text),
				observability.String("bbox", group.Rect.String()))
			if p.report != nil {
				p.report.Grouped++
			}
			if !dimension.IsCandidate(group.Text) {
				continue
			}
			converted, ok := p.convertToken(ctx, log, page.Number(), group.Text)
			if !ok || converted == group.Text {
				continue
			}
			log.Info("replacing token",
				observability.String("from", group.Text),
				observability.String("to", converted))
			if p.report != nil {
				p.report.AddConversion(page.Number(), group.Text, converted)
			}
			replacements = append(replacements, dimension.Replacement{
				Rect:     group.Rect,
				Text:     converted,
				Original: group.Text,
				FontName: group.FontName,
				Size:     group.Size,
				Color:    group.Color,
			})
		}
	}
	if len(replacements) == 0 {
		return nil
	}
	return p.apply(page, log, replacements)
}

// convertToken runs the rule hook, then the built-in classifier. The
// second return is false when the token must stay unchanged.
func (p *Processor) convertToken(ctx context.Context, log observability.Logger, pageNum int, token string) (string, bool) {
	if p.rules != nil {
		decision, text, err := p.rules.Decide(ctx, token, pageNum)
		switch {
		case err != nil:
			// Hook failures never block the built-in conversion.
			log.Warn("rule hook failed", observability.String("token", token), observability.Error("err", err))
		case decision == scripting.Skip:
			log.Info("rule hook skipped token", observability.String("token", token))
			if p.report != nil {
				p.report.AddSkip(pageNum, token, "rule hook")
			}
			return token, false
		case decision == scripting.Override:
			log.Info("rule hook override",
				observability.String("token", token),
				observability.String("replacement", text))
			return text, true
		}
	}

	converted, outcome := dimension.Convert(token)
	if outcome != dimension.Converted {
		log.Info("token skipped",
			observability.String("token", token),
			observability.String("reason", outcome.String()))
		if p.report != nil {
			p.report.AddSkip(pageNum, token, outcome.String())
		}
		return token, false
	}
	return converted, true
}

// apply erases every replacement region in one commit, then reinserts
// the converted text. A failed insertion retries once with the fallback
// font; a second failure is logged and the remaining records continue.
func (p *Processor) apply(page *document.Page, log observability.Logger, replacements []dimension.Replacement) error {
	log.Info("applying redactions", observability.Int("count", len(replacements)))
	red := editor.NewRedactions(page)
	for _, rep := range replacements {
		red.Add(rep.Rect)
	}
	if err := red.Commit(); err != nil {
		return fmt.Errorf("redact page %d: %w", page.Number(), err)
	}

	log.Info("reinserting converted text")
	for _, rep := range replacements {
		opts := editor.TextOptions{Font: rep.FontName, Size: rep.Size, Color: rep.Color}
		err := editor.InsertTextbox(page, rep.Rect, rep.Text, opts)
		if err == nil {
			log.Info("inserted text",
				observability.String("text", rep.Text),
				observability.String("bbox", rep.Rect.String()))
			continue
		}
		log.Warn("insertion failed, falling back",
			observability.String("font", rep.FontName),
			observability.Error("err", err))
		editor.EnsureFallbackFont(page)
		opts.Font = editor.FallbackFontName
		if err := editor.InsertTextbox(page, rep.Rect, rep.Text, opts); err != nil {
			fe := &editor.FontError{Page: page.Number(), FontName: rep.FontName, Reason: err.Error()}
			log.Error("fallback insertion failed",
				observability.String("text", rep.Text),
				observability.Error("err", fe))
			continue
		}
		log.Info("inserted text with fallback font",
			observability.String("text", rep.Text),
			observability.String("bbox", rep.Rect.String()))
	}
	return nil
}
