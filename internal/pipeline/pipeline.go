// Package pipeline orchestrates local field extraction, vendor resolution,
// building matching and the optional vision fallbacks into one
// ExtractionResult.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/postbeschriftung/extraction/constants"
	"github.com/postbeschriftung/extraction/internal/common"
	"github.com/postbeschriftung/extraction/internal/docfields"
	"github.com/postbeschriftung/extraction/internal/entity"
	"github.com/postbeschriftung/extraction/internal/filename"
	"github.com/postbeschriftung/extraction/internal/match"
	"github.com/postbeschriftung/extraction/internal/vendors"
	"github.com/postbeschriftung/extraction/internal/vision"
)

// Config holds the fallback thresholds of the orchestration. Empirically
// tuned; override rather than re-derive.
type Config struct {
	// VisionTextThreshold: below this many characters of raw text the page
	// image (if any) is sent to the vision service.
	VisionTextThreshold int
	// VendorRetryBelow: a vendor under this confidence triggers the
	// vendor-only vision re-query.
	VendorRetryBelow float64
	// VisionFieldConfidence is assigned to fields the vision service
	// supplied; VisionSoftConfidence to building candidate and date.
	VisionFieldConfidence float64
	VisionSoftConfidence  float64
	// VisionTimeout bounds each outbound vision call.
	VisionTimeout time.Duration
}

const (
	DefaultVisionTextThreshold   = 200
	DefaultVendorRetryBelow      = 0.5
	DefaultVisionFieldConfidence = 0.85
	DefaultVisionSoftConfidence  = 0.75
	DefaultVisionTimeout         = 30 * time.Second
)

func (c Config) withDefaults() Config {
	if c.VisionTextThreshold <= 0 {
		c.VisionTextThreshold = DefaultVisionTextThreshold
	}
	if c.VendorRetryBelow <= 0 {
		c.VendorRetryBelow = DefaultVendorRetryBelow
	}
	if c.VisionFieldConfidence <= 0 {
		c.VisionFieldConfidence = DefaultVisionFieldConfidence
	}
	if c.VisionSoftConfidence <= 0 {
		c.VisionSoftConfidence = DefaultVisionSoftConfidence
	}
	if c.VisionTimeout <= 0 {
		c.VisionTimeout = DefaultVisionTimeout
	}
	return c
}

// Pipeline wires the extraction stages together. Stateless across calls and
// safe for concurrent use; registry and alias map arrive fresh per request.
type Pipeline struct {
	Logger  *slog.Logger
	Cfg     Config
	Fields  *docfields.Extractor
	Vendors *vendors.Resolver
	Matcher *match.Matcher
	Vision  vision.Extractor // optional; nil disables all vision fallbacks
}

func New(logger *slog.Logger, cfg Config, fields *docfields.Extractor,
	vend *vendors.Resolver, matcher *match.Matcher, vis vision.Extractor) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if fields == nil {
		fields = docfields.NewExtractor(docfields.Config{})
	}
	if vend == nil {
		vend = vendors.NewResolver(logger, vendors.Config{})
	}
	if matcher == nil {
		matcher = match.NewMatcher(logger, match.Config{})
	}
	return &Pipeline{
		Logger:  logger,
		Cfg:     cfg.withDefaults(),
		Fields:  fields,
		Vendors: vend,
		Matcher: matcher,
		Vision:  vis,
	}
}

// Request carries the per-call inputs. Everything is supplied by the caller;
// the pipeline performs no ambient I/O.
type Request struct {
	Text          string
	PageImage     []byte // optional rendered first page
	VendorAliases map[string]string
	Registry      []entity.BuildingRegistryEntry
}

// Run executes the fixed fallback sequence. It never fails for data-quality
// reasons: every field has a safe default and a confidence floor, and vision
// errors degrade to "no vision data".
func (p *Pipeline) Run(ctx context.Context, req Request) entity.ExtractionResult {
	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)
	start := time.Now()
	p.Logger.Info("pipeline.start",
		"run_id", runID,
		"text_len", len(req.Text),
		"has_image", len(req.PageImage) > 0,
		"registry_size", len(req.Registry),
	)

	local := p.Fields.Extract(req.Text)

	st := state{
		docType:      local.DocType,
		docTypeConf:  local.DocTypeConfidence,
		amount:       local.Amount,
		amountConf:   local.AmountConfidence,
		date:         local.Date,
		dateConf:     local.DateConfidence,
		building:     local.BuildingCandidate,
		buildingConf: local.BuildingConfidence,
	}

	// vision augmentation for near-empty text layers; whitespace padding
	// and multi-byte characters must not inflate the measured length
	textLen := utf8.RuneCountInString(strings.TrimSpace(req.Text))
	if textLen < p.Cfg.VisionTextThreshold && len(req.PageImage) > 0 && p.Vision != nil {
		p.mergeVision(ctx, runID, req.PageImage, &st)
	}

	// vendor: vision-supplied name wins, otherwise the tactic chain
	var vend vendors.Candidate
	if st.visionVendor != "" {
		vend = vendors.Candidate{
			Name:       vendors.Sanitize(st.visionVendor, p.Vendors.Cfg.MaxNameLen),
			Confidence: p.Cfg.VisionFieldConfidence,
		}
	} else {
		vend = p.Vendors.Resolve(req.Text, req.VendorAliases)
	}

	bm := p.Matcher.Match(st.building, req.Registry)
	matched := lookupEntry(req.Registry, bm.ObjectNumber)

	vend = p.refineVendor(ctx, runID, req, vend, matched)

	objectNumber := ""
	if bm.ObjectNumber != nil {
		objectNumber = *bm.ObjectNumber
	}
	name := filename.Build(filename.Input{
		ObjectNumber: objectNumber,
		Date:         st.date,
		DocType:      string(st.docType),
		Vendor:       vend.Name,
		Amount:       st.amount,
	})

	res := entity.ExtractionResult{
		DocType:           string(st.docType),
		Vendor:            vend.Name,
		Currency:          constants.DefaultCurrency,
		BuildingMatch:     bm,
		SuggestedFilename: name,
		Confidence: entity.Confidence{
			DocType:  st.docTypeConf,
			Vendor:   vend.Confidence,
			Amount:   st.amountConf,
			Building: st.buildingConf,
		},
	}
	if st.amount != nil {
		res.Amount = entity.NewMoney(*st.amount)
	}
	if st.date != "" {
		d := st.date
		res.Date = &d
	}

	p.Logger.Info("pipeline.ok",
		"run_id", runID,
		"doc_type", res.DocType,
		"vendor", res.Vendor,
		"date", st.date,
		"object_number", objectNumber,
		"filename", res.SuggestedFilename,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// state is the mutable working copy of the extracted fields while fallbacks
// run; never exposed.
type state struct {
	docType      constants.DocType
	docTypeConf  float64
	amount       *decimal.Decimal
	amountConf   float64
	date         string
	dateConf     float64
	building     string
	buildingConf float64
	visionVendor string
}

// mergeVision issues the full-field vision query and overwrites only the
// fields the service actually supplied. Errors degrade to "no vision data".
func (p *Pipeline) mergeVision(ctx context.Context, runID string, image []byte, st *state) {
	vctx, cancel := common.WithTimeout(ctx, p.Cfg.VisionTimeout)
	defer cancel()

	vf, err := p.Vision.ExtractFields(vctx, image)
	if err != nil {
		p.Logger.Warn("pipeline.vision_unavailable", "run_id", runID, "error", err)
		return
	}

	if vf.DocType != nil {
		st.docType = constants.DocType(*vf.DocType)
		st.docTypeConf = p.Cfg.VisionFieldConfidence
	}
	if vf.Vendor != nil {
		st.visionVendor = *vf.Vendor
	}
	if vf.Amount != nil {
		if d, err := decimal.NewFromString(*vf.Amount); err == nil {
			st.amount = &d
			st.amountConf = p.Cfg.VisionFieldConfidence
		}
	}
	if vf.Date != nil {
		st.date = *vf.Date
		st.dateConf = p.Cfg.VisionSoftConfidence
	}
	if vf.BuildingCandidate != nil {
		st.building = *vf.BuildingCandidate
		st.buildingConf = p.Cfg.VisionSoftConfidence
	}
	p.Logger.Info("pipeline.vision_merged", "run_id", runID,
		"doc_type", vf.DocType != nil,
		"vendor", vf.Vendor != nil,
		"amount", vf.Amount != nil,
		"date", vf.Date != nil,
		"building", vf.BuildingCandidate != nil,
	)
}

// refineVendor applies the rejection guard and, when it fires (or confidence
// is too low), tries the vendor-only vision re-query, then the plain header
// scorer as the last resort.
func (p *Pipeline) refineVendor(ctx context.Context, runID string, req Request,
	vend vendors.Candidate, matched *entity.BuildingRegistryEntry) vendors.Candidate {

	rejected := p.Vendors.Rejected(vend.Name, matched)
	if !rejected && vend.Confidence >= p.Cfg.VendorRetryBelow {
		return vend
	}

	if p.Vision != nil && len(req.PageImage) > 0 {
		vctx, cancel := common.WithTimeout(ctx, p.Cfg.VisionTimeout)
		name, err := p.Vision.ExtractVendor(vctx, req.PageImage)
		cancel()
		switch {
		case err != nil:
			p.Logger.Warn("pipeline.vendor_vision_unavailable", "run_id", runID, "error", err)
		case name != nil:
			clean := vendors.Sanitize(*name, p.Vendors.Cfg.MaxNameLen)
			if clean != constants.UnknownVendor && !p.Vendors.Rejected(clean, matched) {
				p.Logger.Info("pipeline.vendor_vision_accepted", "run_id", runID, "vendor", clean)
				return vendors.Candidate{Name: clean, Confidence: p.Cfg.VisionFieldConfidence}
			}
		}
	}

	if rejected {
		retry := p.Vendors.ResolveHeader(req.Text)
		if retry.Name != constants.UnknownVendor && !p.Vendors.Rejected(retry.Name, matched) {
			p.Logger.Info("pipeline.vendor_rescored", "run_id", runID, "vendor", retry.Name)
			return retry
		}
		// prefer an explicit unknown over a wrong receiver name
		return vendors.Candidate{Name: constants.UnknownVendor, Confidence: vendors.ConfUnknown}
	}
	return vend
}

func lookupEntry(registry []entity.BuildingRegistryEntry, objectNumber *string) *entity.BuildingRegistryEntry {
	if objectNumber == nil {
		return nil
	}
	for i := range registry {
		if registry[i].ObjectNumber == *objectNumber {
			return &registry[i]
		}
	}
	return nil
}
