package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evsys/eventlint/internal/check"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Blame string
}

// CheckResult holds check results for JSON output.
type CheckResult struct {
	Events     int             `json:"events"`
	Passed     bool            `json:"passed"`
	Mismatched []CheckMismatch `json:"mismatched,omitempty"`
}

// CheckMismatch is one conflicting event and its competing signatures,
// ordered by ascending usage count.
type CheckMismatch struct {
	Event      string   `json:"event"`
	Signatures []string `json:"signatures"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scan-file>",
		Short: "Check a scan document for signature mismatches",
		Long: `Group every event's publish, subscribe and registerEvent records by
canonical signature and report each event whose records disagree.

A failed extraction participates as the signature ERROR and a call with
no arguments as (void); both conflict with real signatures on purpose.

Example:
  eventlint check scan.json
  eventlint check scan.json --blame /path/to/worktree`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Blame, "blame", "", "git worktree root; annotate call sites with git blame")

	return cmd
}

func runCheck(opts *CheckOptions, docPath string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := loadDocument(docPath)
	if err != nil {
		return outputCheckError(formatter, err)
	}

	res := check.Analyze(doc)

	if opts.Format == "json" {
		return outputCheckJSON(formatter, res)
	}

	dec := check.NewSourceDecorator(opts.Blame)
	rw := check.NewReportWriter(cmd.OutOrStdout(), dec)
	if err := rw.Write(res); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}
	if err := rw.WriteSummary(res); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if res.Failed() {
		return NewExitError(ExitFailure, fmt.Sprintf("event validation failed with %d mismatched event(s)", len(res.Mismatched)))
	}
	return nil
}

// checkResultOf flattens an analysis result for JSON output.
func checkResultOf(res check.Result) CheckResult {
	result := CheckResult{Events: res.Events, Passed: !res.Failed()}
	for _, ev := range res.Mismatched {
		m := CheckMismatch{Event: ev.Event}
		for _, g := range ev.Groups {
			m.Signatures = append(m.Signatures, string(g.Signature))
		}
		result.Mismatched = append(result.Mismatched, m)
	}
	return result
}

// outputCheckJSON writes the JSON verdict. A mismatch is a check failure
// (exit code 1), not a command error.
func outputCheckJSON(formatter *OutputFormatter, res check.Result) error {
	result := checkResultOf(res)
	if result.Passed {
		return formatter.Success(result)
	}

	response := CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("%d event(s) with mismatched signatures", len(result.Mismatched)),
		},
	}

	encoder := json.NewEncoder(formatter.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	return NewExitError(ExitFailure, fmt.Sprintf("event validation failed with %d mismatched event(s)", len(result.Mismatched)))
}

// outputCheckError reports a document load failure. A document that fails
// schema validation exits 1, the same as a mismatch, so build gating treats
// garbage input as a failed check; a missing path is a command error.
func outputCheckError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		code := ExitCommandError
		if loadErr.Code == ErrCodeBadDocument {
			code = ExitFailure
		}
		return NewExitError(code, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load scan document", err)
}
