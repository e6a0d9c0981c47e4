// Package pipeline runs a question through the full
// select-compose-complete-extract-normalize-execute-visualize sequence.
// Each run is scoped to a Request; there is no shared conversational state
// between runs.
package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rolld/sales-assistant/internal/catalog"
	"github.com/rolld/sales-assistant/internal/dialect"
	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/extract"
	"github.com/rolld/sales-assistant/internal/llm"
	"github.com/rolld/sales-assistant/internal/logging"
	"github.com/rolld/sales-assistant/internal/prompt"
	"github.com/rolld/sales-assistant/internal/relevance"
	"github.com/rolld/sales-assistant/internal/viz"
	"github.com/rolld/sales-assistant/internal/warehouse"
)

// Request carries one question through the pipeline.
type Request struct {
	ID       uuid.UUID
	Question string
	Mode     prompt.Mode
}

// NewRequest creates a request with a fresh ID.
func NewRequest(question string, mode prompt.Mode) Request {
	return Request{
		ID:       uuid.New(),
		Question: strings.TrimSpace(question),
		Mode:     mode,
	}
}

// Outcome collects everything a run produced. On error the outcome still
// carries whatever stages completed, so callers can show the SQL that failed
// or the tables that were selected.
type Outcome struct {
	SelectedTables []string
	Prompt         string
	RawCompletion  string
	SQL            string
	Result         *warehouse.ResultSet
	Chart          *viz.Chart
	Warnings       []string
}

func (o *Outcome) warn(message string) {
	o.Warnings = append(o.Warnings, message)
}

// Pipeline wires the stages together. All fields are required except Chart
// synthesis inputs, which only apply in visualization mode.
type Pipeline struct {
	Catalog  *catalog.Catalog
	Policy   relevance.Policy
	Service  llm.Service
	Executor warehouse.Executor
}

// Run executes the full sequence for one request. Failures local to a stage
// are recovered where a documented fallback exists (canned completion,
// default chart); everything else returns a structured error alongside the
// partial outcome.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	outcome := &Outcome{}

	if req.Question == "" {
		return outcome, apperrors.New(apperrors.ErrTypeValidation, "question must not be empty")
	}

	if !req.Mode.Valid() {
		return outcome, apperrors.Newf(apperrors.ErrTypeValidation,
			"invalid mode: %q (must be sql or viz)", string(req.Mode))
	}

	log := logging.WithField("request_id", req.ID.String())
	if log == nil {
		logging.SetupFallbackLogger()
		log = logging.WithField("request_id", req.ID.String())
	}

	outcome.SelectedTables = p.Policy.Select(req.Question, p.Catalog)
	if len(outcome.SelectedTables) == 0 {
		return outcome, apperrors.NewNoRelevantTables(req.Question)
	}

	log.WithField("tables", len(outcome.SelectedTables)).Debug("relevant tables selected")

	outcome.Prompt = prompt.Compose(req.Question, outcome.SelectedTables, req.Mode, p.Catalog)

	raw, err := p.Service.Complete(ctx, prompt.SystemPrompt, outcome.Prompt)
	if err != nil {
		log.WithError(err).Warn("completion failed, using canned fallback")
		outcome.warn("The completion service failed; a sample query was used instead.")

		raw, err = llm.NewFallbackService(llm.ReasonCallFailed).Complete(ctx, prompt.SystemPrompt, outcome.Prompt)
		if err != nil {
			return outcome, err
		}
	}

	outcome.RawCompletion = raw

	sqlText := extract.SQL(raw)
	if sqlText == "" {
		return outcome, apperrors.New(apperrors.ErrTypeMalformedCompletion,
			"the completion contained no SQL").
			WithDetail(raw).
			WithSuggestion("Try rephrasing the question")
	}

	outcome.SQL = dialect.Normalize(sqlText)

	result, err := p.Executor.Execute(ctx, outcome.SQL)
	if err != nil {
		return outcome, err
	}

	outcome.Result = result

	if req.Mode != prompt.ModeVisualization {
		return outcome, nil
	}

	code, hasCode := extract.Visualization(raw)

	chart, err := viz.Synthesize(code, hasCode, result)
	if err != nil {
		log.WithError(err).Warn("chart code interpretation failed, using default chart")
		outcome.warn("The generated chart code could not be used; a default chart was chosen.")

		chart, err = viz.DefaultChart(result)
		if err != nil {
			return outcome, err
		}
	}

	outcome.Chart = chart

	return outcome, nil
}
