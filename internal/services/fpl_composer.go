package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	reqctx "infinite-experiment/briefing/internal/context"
	"infinite-experiment/briefing/internal/logging"
	"infinite-experiment/briefing/internal/metrics"
	"infinite-experiment/briefing/internal/models/dtos"
	gormModels "infinite-experiment/briefing/internal/models/gorm"
)

// lookupCount is the number of lookups one composition fans out to.
const lookupCount = 7

type SubmissionValidator interface {
	DecodeAndValidate(raw []byte) (*dtos.FlightPlanSubmission, error)
	Validate(sub *dtos.FlightPlanSubmission) error
}

type AerodromeLookup interface {
	Lookup(ctx context.Context, icao, dof string) (dtos.AerodromeRecord, bool)
}

type WeatherLookup interface {
	Lookup(ctx context.Context, icao string) (dtos.WeatherBundle, bool)
}

type NotamLookup interface {
	Lookup(ctx context.Context, icao string) ([]dtos.NotamRecord, bool)
}

type AtsPreviewLookup interface {
	Preview(ctx context.Context, sub *dtos.FlightPlanSubmission) (string, bool)
}

// CompositionRecorder persists an audit row per successful composition.
type CompositionRecorder interface {
	RecordComposition(ctx context.Context, audit *gormModels.CompositionAudit) error
}

// Lookups groups the four briefing sources.
type Lookups struct {
	Aerodrome  AerodromeLookup
	Weather    WeatherLookup
	Notam      NotamLookup
	AtsPreview AtsPreviewLookup
}

// UnexpectedError wraps a defect raised while composing, such as a panic in
// a lookup. It is the only failure besides validation that Compose returns.
type UnexpectedError struct {
	Op    string
	Err   error
	Stack []byte
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected failure in %s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

type FplComposer struct {
	validator   SubmissionValidator
	lookups     Lookups
	recorder    CompositionRecorder
	fanoutLimit int
	metrics     *metrics.MetricsRegistry
	now         func() time.Time
}

// NewFplComposer creates a composer. recorder may be nil to skip auditing.
// fanoutLimit bounds how many lookups run at once; values below 1 run all
// lookups concurrently.
func NewFplComposer(validator SubmissionValidator, lookups Lookups, fanoutLimit int, recorder CompositionRecorder, m *metrics.MetricsRegistry) *FplComposer {
	if fanoutLimit < 1 {
		fanoutLimit = lookupCount
	}
	return &FplComposer{
		validator:   validator,
		lookups:     lookups,
		recorder:    recorder,
		fanoutLimit: fanoutLimit,
		metrics:     m,
		now:         time.Now,
	}
}

// Compose decodes and validates raw, then builds the briefing. It fails only
// with a *validation.ValidationError or an *UnexpectedError; upstream
// failures show up as degraded sections of the returned briefing.
func (c *FplComposer) Compose(ctx context.Context, raw []byte) (*dtos.ComposedBriefing, error) {
	sub, err := c.validator.DecodeAndValidate(raw)
	if err != nil {
		c.metrics.ObserveComposition("invalid", 0)
		return nil, err
	}
	return c.compose(ctx, sub)
}

// ComposeSubmission is Compose for an already decoded submission. The
// submission is validated again before any lookup runs.
func (c *FplComposer) ComposeSubmission(ctx context.Context, sub *dtos.FlightPlanSubmission) (*dtos.ComposedBriefing, error) {
	if err := c.validator.Validate(sub); err != nil {
		c.metrics.ObserveComposition("invalid", 0)
		return nil, err
	}
	return c.compose(ctx, sub)
}

func (c *FplComposer) compose(ctx context.Context, sub *dtos.FlightPlanSubmission) (*dtos.ComposedBriefing, error) {
	start := c.now()
	dep := sub.Departure.ICAO
	dest := sub.Destination.ICAO
	dof := sub.Other.DateOfFlight

	// Lookups run to completion even if the caller goes away.
	lookupCtx := context.WithoutCancel(ctx)

	var r lookupResults

	g := new(errgroup.Group)
	g.SetLimit(c.fanoutLimit)

	spawn(g, "aerodrome:"+dep, func() {
		r.depAerodrome, r.degraded[0] = c.lookups.Aerodrome.Lookup(lookupCtx, dep, dof)
	})
	spawn(g, "aerodrome:"+dest, func() {
		r.destAerodrome, r.degraded[1] = c.lookups.Aerodrome.Lookup(lookupCtx, dest, dof)
	})
	spawn(g, "weather:"+dep, func() {
		r.depWeather, r.degraded[2] = c.lookups.Weather.Lookup(lookupCtx, dep)
	})
	spawn(g, "weather:"+dest, func() {
		r.destWeather, r.degraded[3] = c.lookups.Weather.Lookup(lookupCtx, dest)
	})
	spawn(g, "notam:"+dep, func() {
		r.depNotams, r.degraded[4] = c.lookups.Notam.Lookup(lookupCtx, dep)
	})
	spawn(g, "notam:"+dest, func() {
		r.destNotams, r.degraded[5] = c.lookups.Notam.Lookup(lookupCtx, dest)
	})
	spawn(g, "ats_preview", func() {
		r.preview, r.degraded[6] = c.lookups.AtsPreview.Preview(lookupCtx, sub)
	})

	if err := g.Wait(); err != nil {
		logging.Error("Composition failed",
			"request_id", reqctx.GetRequestID(ctx),
			"error", err.Error(),
		)
		c.metrics.ObserveComposition("error", 0)
		return nil, err
	}

	briefing := merge(sub, &r)

	elapsed := c.now().Sub(start)
	degradedCount := r.degradedCount()

	c.metrics.ObserveComposition("ok", elapsed)
	logging.Info("Composed briefing",
		"request_id", reqctx.GetRequestID(ctx),
		"departure", dep,
		"destination", dest,
		"dof", dof,
		"degraded_lookups", degradedCount,
		"duration_ms", elapsed.Milliseconds(),
	)

	c.record(lookupCtx, &gormModels.CompositionAudit{
		RequestID:       reqctx.GetRequestID(ctx),
		DepartureICAO:   dep,
		DestinationICAO: dest,
		DateOfFlight:    dof,
		DegradedLookups: degradedCount,
		DurationMs:      elapsed.Milliseconds(),
	})

	return briefing, nil
}

// record writes the audit row. Failures are logged and do not affect the
// briefing.
func (c *FplComposer) record(ctx context.Context, audit *gormModels.CompositionAudit) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordComposition(ctx, audit); err != nil {
		logging.Warn("Failed to record composition audit",
			"request_id", audit.RequestID,
			"error", err.Error(),
		)
	}
}

// lookupResults collects the fan-out. Each goroutine writes only its own
// fields.
type lookupResults struct {
	depAerodrome, destAerodrome dtos.AerodromeRecord
	depWeather, destWeather     dtos.WeatherBundle
	depNotams, destNotams       []dtos.NotamRecord
	preview                     string
	degraded                    [lookupCount]bool
}

func (r *lookupResults) degradedCount() int {
	n := 0
	for _, d := range r.degraded {
		if d {
			n++
		}
	}
	return n
}

// merge builds the briefing keyed by ICAO. Departure entries are written
// first so the destination wins when both are the same aerodrome.
func merge(sub *dtos.FlightPlanSubmission, r *lookupResults) *dtos.ComposedBriefing {
	dep := sub.Departure.ICAO
	dest := sub.Destination.ICAO

	briefing := &dtos.ComposedBriefing{
		FlightPlan:  sub,
		Departure:   r.depAerodrome,
		Destination: r.destAerodrome,
		Meteo:       make(map[string]dtos.WeatherBundle, 2),
		Notams:      make(map[string][]dtos.NotamRecord, 2),
		AtsPreview:  r.preview,
	}
	briefing.Meteo[dep] = r.depWeather
	briefing.Meteo[dest] = r.destWeather
	briefing.Notams[dep] = nonNilNotams(r.depNotams)
	briefing.Notams[dest] = nonNilNotams(r.destNotams)
	return briefing
}

// spawn runs fn in the group, turning a panic into an *UnexpectedError.
func spawn(g *errgroup.Group, op string, fn func()) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &UnexpectedError{
					Op:    op,
					Err:   fmt.Errorf("panic: %v", r),
					Stack: debug.Stack(),
				}
			}
		}()
		fn()
		return nil
	})
}

func nonNilNotams(n []dtos.NotamRecord) []dtos.NotamRecord {
	if n == nil {
		return []dtos.NotamRecord{}
	}
	return n
}
