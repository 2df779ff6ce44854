package export

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Phase identifies a pipeline stage. Progress callbacks fire in declaration
// order and never out of order.
type Phase string

const (
	PhaseTransform Phase = "transform"
	PhaseValidate  Phase = "validate"
	PhaseExport    Phase = "export"
)

// ProgressFunc receives phase transitions for UI progress reporting.
type ProgressFunc func(phase Phase, message string)

// ConflictAction controls what happens when the destination already has a
// library or plan folder with the configured name.
type ConflictAction string

const (
	// ConflictReplace clears the existing container before re-populating it.
	ConflictReplace ConflictAction = "replace"
	// ConflictAppend adds new items alongside existing ones, skipping items
	// already recorded in the export state.
	ConflictAppend ConflictAction = "append"
)

// Warning is a non-fatal validation finding attached to the export result.
type Warning struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Validation is the outcome of a destination's validate phase. Errors are
// fatal and abort the export; warnings ride along on a successful result.
type Validation struct {
	IsValid  bool
	Warnings []Warning
	Errors   []string
}

// Result is the unified outcome of one export invocation. Success=false
// always implies ItemsExported=0.
type Result struct {
	Success       bool      `json:"success"`
	FileName      string    `json:"fileName"`
	Format        string    `json:"format"`
	ItemsExported int       `json:"itemsExported"`
	Warnings      []Warning `json:"warnings"`
	Errors        []string  `json:"errors"`
}

// Destination is one export target, constructed fresh per invocation with
// its source input. Transform builds the destination payload, Validate
// checks it against destination constraints, Export writes it out.
// Independent invocations share no state; a single destination value must
// not be reused across Run calls.
type Destination interface {
	// Name is the destination id ("planmypeak", "intervalsicu").
	Name() string
	// Format describes the produced artifact ("library", "plan").
	Format() string
	// FileName labels the export in the result (not written to disk here).
	FileName() string

	Transform(ctx context.Context) ([]Warning, error)
	Validate() Validation
	Export(ctx context.Context) (int, error)
}

// Run executes the transform → validate → export pipeline against one
// destination. Failures never escape as errors: every outcome is folded into
// the Result. A validate failure short-circuits before the export phase.
// The context is honored at phase boundaries only; an in-flight phase runs
// to completion.
func Run(ctx context.Context, dest Destination, progress ProgressFunc, log *slog.Logger) Result {
	result := Result{
		FileName: dest.FileName(),
		Format:   dest.Format(),
		Warnings: []Warning{},
		Errors:   []string{},
	}
	if progress == nil {
		progress = func(Phase, string) {}
	}

	if err := ctx.Err(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	progress(PhaseTransform, "transforming source items")
	warnings, err := dest.Transform(ctx)
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		logFailure(log, dest.Name(), PhaseTransform, err)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	progress(PhaseValidate, "validating transformed items")
	validation := dest.Validate()
	result.Warnings = append(result.Warnings, validation.Warnings...)
	if !validation.IsValid {
		// Error messages only; the export phase is never reached.
		result.Errors = append(result.Errors, validation.Errors...)
		log.Warn("export validation failed",
			"destination", dest.Name(),
			"errors", len(validation.Errors),
			"warnings", len(validation.Warnings),
		)
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	progress(PhaseExport, "exporting to "+dest.Name())
	count, err := dest.Export(ctx)
	if err != nil {
		logFailure(log, dest.Name(), PhaseExport, err)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Success = true
	result.ItemsExported = count
	log.Info("export complete",
		"destination", dest.Name(),
		"items", count,
		"warnings", len(result.Warnings),
	)
	return result
}

// logFailure logs a phase failure with auth-aware severity: authentication
// problems are an expected, recoverable condition (the athlete re-connects
// the destination) and log at Warn instead of Error.
func logFailure(log *slog.Logger, dest string, phase Phase, err error) {
	if IsAuthError(err) {
		log.Warn("export failed: not authenticated",
			"destination", dest, "phase", string(phase), "error", err)
		return
	}
	log.Error("export failed",
		"destination", dest, "phase", string(phase), "error", err)
}

// IsAuthError reports whether err looks like an authentication failure:
// an HTTP 401/403 or a message mentioning an unauthenticated state.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && (httpErr.Status == 401 || httpErr.Status == 403) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unauthorized") || strings.Contains(msg, "not authenticated")
}
