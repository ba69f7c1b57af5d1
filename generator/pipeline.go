package generator

import (
	"context"
	"path"
	"time"

	"github.com/kendall-kelly/chatwidget-api/logger"
	"github.com/kendall-kelly/chatwidget-api/metrics"
	"github.com/kendall-kelly/chatwidget-api/models"
)

// Stage is a step of one generation run.
type Stage string

const (
	StageStart             Stage = "start"
	StageIdentifierDerived Stage = "identifier_derived"
	StageTemplatesLoaded   Stage = "templates_loaded"
	StageSubstituted       Stage = "substituted"
	StageBuilt             Stage = "built"
	StageWritten           Stage = "written"
	StageDone              Stage = "done"
	StageFailed            Stage = "failed"
)

// Pipeline turns one order into a published artifact set. It holds no state
// between runs, so one Pipeline serves any number of concurrent orders.
type Pipeline struct {
	Templates    *TemplateLoader
	Builder      *Builder
	Store        ArtifactStore
	PublicPrefix string
	APIURL       string
	Logger       logger.Logger
}

// PublicPath returns the URL path the markup artifact is served at.
func (p *Pipeline) PublicPath(identifier string) string {
	return path.Join("/", p.PublicPrefix, ArtifactFilename(identifier, KindMarkup))
}

// GenerateIframe runs the whole pipeline for order and returns the public
// path of the markup artifact. Errors are the originating component's
// *Error, unchanged.
func (p *Pipeline) GenerateIframe(ctx context.Context, order models.Order) (publicPath string, err error) {
	log := p.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"order_number": order.OrderNumber})

	stage := StageStart
	started := time.Now()
	metrics.GenerationsActive.Inc()
	defer func() {
		metrics.GenerationsActive.Dec()
		elapsed := time.Since(started)
		if err != nil {
			code := CodeOf(err)
			metrics.GenerationsTotal.WithLabelValues("failed", string(code)).Inc()
			metrics.GenerationDuration.WithLabelValues("failed").Observe(elapsed.Seconds())
			fields := map[string]interface{}{
				"failed_after": stage,
				"error_code":   code,
				"retryable":    IsRetryable(err),
				"duration_ms":  elapsed.Milliseconds(),
			}
			if genErr, ok := err.(*Error); ok && genErr.Code == CodeBuildToolFailure {
				fields["exit_code"] = genErr.ExitCode
				fields["diagnostics"] = genErr.Diagnostics
			}
			log.WithError(err).Error("widget generation failed", fields)
			return
		}
		metrics.GenerationsTotal.WithLabelValues("done", "").Inc()
		metrics.GenerationDuration.WithLabelValues("done").Observe(elapsed.Seconds())
		log.Info("widget generation done", map[string]interface{}{
			"public_path": publicPath,
			"duration_ms": elapsed.Milliseconds(),
		})
	}()
	advance := func(next Stage) {
		stage = next
		log.Debug("widget generation stage", map[string]interface{}{"stage": next})
	}

	if err := order.Validate(); err != nil {
		return "", &Error{Code: CodeInvalidOrder, Message: "order cannot be generated", Err: err}
	}
	identifier := NewIdentifier(order.OrderNumber)
	log = log.WithFields(map[string]interface{}{"identifier": identifier})
	advance(StageIdentifierDerived)

	templates, err := p.Templates.LoadAll(ctx)
	if err != nil {
		return "", err
	}
	advance(StageTemplatesLoaded)

	bindings, err := BuildBindings(order, identifier, p.APIURL)
	if err != nil {
		return "", &Error{Code: CodeMissingBinding, Message: "configuration could not be serialized", Err: err}
	}
	intermediate := make(map[Kind]string, len(Kinds))
	for _, kind := range Kinds {
		text, err := Substitute(kind, templates[kind], bindings)
		if err != nil {
			return "", err
		}
		intermediate[kind] = text
	}
	advance(StageSubstituted)

	style, err := p.Builder.CompileStyle(ctx, intermediate[KindStyle])
	if err != nil {
		return "", err
	}
	script, err := p.Builder.CompileScript(ctx, intermediate[KindScript])
	if err != nil {
		return "", err
	}
	advance(StageBuilt)

	set := ArtifactSet{Markup: intermediate[KindMarkup], Script: script, Style: style}
	if err := p.Store.Write(ctx, identifier, set); err != nil {
		return "", err
	}
	advance(StageWritten)

	advance(StageDone)
	return p.PublicPath(identifier), nil
}
