// Package main provides the offline CRF validator. It needs no external
// databases: eligibility dates come from a JSON file and the audit trail, if
// enabled, is kept in SQLite.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/effect-crf-validators/internal/audit"
	"github.com/effect-crf-validators/internal/config"
	"github.com/effect-crf-validators/internal/crf"
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/logging"
	"github.com/effect-crf-validators/internal/repository"
	"github.com/effect-crf-validators/internal/schedule"
	"github.com/effect-crf-validators/internal/service"
)

// Exit codes
const (
	exitValid   = 0
	exitInvalid = 1
	exitError   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("crf-validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", ".env", "dotenv file with CRF_* settings")
	eligibilityFile := fs.String("eligibility", "", "JSON file mapping subject identifiers to eligibility dates")
	auditFlag := fs.Bool("audit", false, "record outcomes in the SQLite audit trail")
	jsonOut := fs.Bool("json", false, "print results as JSON")
	listForms := fs.Bool("forms", false, "list the known forms and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: crf-validate [flags] submission.json...\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := config.LoadLiteConfig(*envFile)
	if err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return exitError
	}
	if *eligibilityFile != "" {
		cfg.EligibilityFile = *eligibilityFile
	}
	if *auditFlag {
		cfg.AuditEnabled = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return exitError
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "stderr")
	if err != nil {
		fmt.Fprintf(stderr, "configuring logging: %v\n", err)
		return exitError
	}

	validator, closeFn, err := buildValidator(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize validator")
		return exitError
	}
	defer closeFn()

	if *listForms {
		for _, rs := range validator.Forms() {
			fmt.Fprintf(stdout, "%-32s %s\n", rs.Name, rs.Title)
		}
		return exitValid
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return exitError
	}

	var subs []*domain.Submission
	var sources []string
	for _, path := range fs.Args() {
		loaded, err := loadSubmissions(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			return exitError
		}
		for i := range loaded {
			subs = append(subs, loaded[i])
			sources = append(sources, fmt.Sprintf("%s[%d]", path, i))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	items, err := validateAll(ctx, validator, subs)
	if err != nil {
		logger.WithError(err).Error("Validation failed")
		return exitError
	}

	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			fmt.Fprintf(stderr, "encoding results: %v\n", err)
			return exitError
		}
	} else {
		printResults(stdout, sources, items)
	}

	return exitCode(items)
}

// buildValidator wires the lite context providers and optional audit store.
func buildValidator(cfg *config.LiteConfig, logger *logrus.Logger) (*service.ValidationService, func(), error) {
	closeFn := func() {}

	sched, err := schedule.New(cfg.VisitCodes)
	if err != nil {
		return nil, closeFn, fmt.Errorf("building visit schedule: %w", err)
	}

	providers := crf.Providers{Schedule: sched}
	if cfg.EligibilityFile != "" {
		eligibility, err := repository.LoadStaticEligibility(cfg.EligibilityFile)
		if err != nil {
			return nil, closeFn, err
		}
		logger.WithField("subjects", eligibility.Len()).Debug("Loaded eligibility dates")
		providers.Eligibility = eligibility
	}

	var recorder domain.ResultRecorder
	if cfg.AuditEnabled {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, closeFn, fmt.Errorf("creating data directory: %w", err)
		}
		store, err := audit.NewSQLiteStore(cfg.AuditDBPath())
		if err != nil {
			return nil, closeFn, err
		}
		recorder = store
		closeFn = func() { _ = store.Close() }
	}

	registry := crf.NewRegistry(logger, providers)
	validator := service.NewValidationService(logger, registry, recorder, domain.ServiceConfig{
		MaxWorkers: cfg.MaxWorkers,
	})
	return validator, closeFn, nil
}

// validateAll runs subs through the service in batches of the service's
// maximum size.
func validateAll(ctx context.Context, validator *service.ValidationService, subs []*domain.Submission) ([]*service.BatchItem, error) {
	const chunk = 100

	items := make([]*service.BatchItem, 0, len(subs))
	for start := 0; start < len(subs); start += chunk {
		end := start + chunk
		if end > len(subs) {
			end = len(subs)
		}
		batch, err := validator.ValidateBatch(ctx, subs[start:end], "")
		if err != nil {
			return nil, err
		}
		for _, item := range batch {
			item.Index += start
			items = append(items, item)
		}
	}
	return items, nil
}

// loadSubmissions reads a file holding one submission object or an array
// of them.
func loadSubmissions(path string) ([]*domain.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	if data[0] == '[' {
		var subs []*domain.Submission
		if err := json.Unmarshal(data, &subs); err != nil {
			return nil, fmt.Errorf("parsing submissions: %w", err)
		}
		return subs, nil
	}

	var sub domain.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("parsing submission: %w", err)
	}
	return []*domain.Submission{&sub}, nil
}

func printResults(w io.Writer, sources []string, items []*service.BatchItem) {
	for _, item := range items {
		source := sources[item.Index]
		switch {
		case item.Error != "":
			fmt.Fprintf(w, "ERROR %s: %s\n", source, item.Error)
		case item.Result.Valid:
			fmt.Fprintf(w, "OK    %s: %s\n", source, item.Result.Form)
		default:
			formErr := item.Result.Error
			fmt.Fprintf(w, "FAIL  %s: %s (%s)\n", source, item.Result.Form, formErr.Kind)
			for _, field := range formErr.Fields() {
				fmt.Fprintf(w, "      %s: %s\n", field, strings.Join(formErr.Messages[field], " "))
			}
		}
	}
}

// exitCode is exitError if any submission could not be validated, else
// exitInvalid if any failed validation.
func exitCode(items []*service.BatchItem) int {
	code := exitValid
	for _, item := range items {
		if item.Error != "" {
			return exitError
		}
		if !item.Result.Valid {
			code = exitInvalid
		}
	}
	return code
}
