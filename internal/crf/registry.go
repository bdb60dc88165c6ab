// Package crf holds the cross-field rule sets of the EFFECT case report
// forms. Each rule set is an ordered list of checks evaluated fail-fast by
// formvalidator.Run; the Registry maps form names to rule sets.
package crf

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
	"github.com/effect-crf-validators/internal/schedule"
	"github.com/effect-crf-validators/internal/vitals"
)

// Providers are the context collaborators consumed by the rule sets.
// Schedule and Vitals fall back to the protocol defaults when nil.
// Eligibility may be nil; rule sets that need it then fail with
// domain.ErrNoProvider.
type Providers struct {
	Schedule    domain.ScheduleInfo
	Eligibility domain.EligibilityProvider
	Vitals      domain.VitalsThresholds
}

func (p Providers) withDefaults() Providers {
	if p.Schedule == nil {
		p.Schedule = schedule.Default()
	}
	if p.Vitals == nil {
		p.Vitals = vitals.Default()
	}
	return p
}

// RuleSet is the ordered list of checks for one form.
type RuleSet struct {
	Name         string
	Title        string
	RequireVisit bool
	Checks       []formvalidator.Check
}

// Validate runs the rule set against sub. A nil result means the form is
// valid; a *domain.FormError is a protocol violation; anything else is an
// infrastructure failure.
func (r *RuleSet) Validate(ctx context.Context, sub *domain.Submission) error {
	if r.RequireVisit && sub.Visit == nil {
		return fmt.Errorf("%s: %w", r.Name, domain.ErrMissingVisit)
	}
	return formvalidator.New(sub).Run(ctx, r.Checks...)
}

// Registry holds the rule set of every supported form.
type Registry struct {
	logger    *logrus.Logger
	providers Providers
	ruleSets  map[string]*RuleSet
}

// NewRegistry builds the registry with every EFFECT form.
func NewRegistry(logger *logrus.Logger, providers Providers) *Registry {
	r := &Registry{
		logger:    logger,
		providers: providers.withDefaults(),
		ruleSets:  make(map[string]*RuleSet),
	}

	r.initializeRuleSets()

	return r
}

func (r *Registry) initializeRuleSets() {
	p := r.providers

	// Reports
	r.addRuleSet("serum_crag_date_note", "Serum CrAg date note", false, serumCragDateNoteChecks(p))

	// Visit tracking
	r.addRuleSet("subject_visit", "Subject visit", true, subjectVisitChecks(p))
	r.addRuleSet("followup", "Follow-up", true, followupChecks(p))

	// Baseline and follow-up CRFs
	r.addRuleSet("patient_history", "Patient history", true, patientHistoryChecks(p))
	r.addRuleSet("arv_history", "ARV history", true, arvHistoryChecks(p))
	r.addRuleSet("vital_signs", "Vital signs", true, vitalSignsChecks(p))
	r.addRuleSet("signs_and_symptoms", "Signs and symptoms", true, signsAndSymptomsChecks(p))
	r.addRuleSet("mental_status", "Mental status", true, mentalStatusChecks(p))
	r.addRuleSet("chest_xray", "Chest x-ray", true, chestXrayChecks(p))
	r.addRuleSet("blood_culture", "Blood culture", true, bloodCultureChecks(p))

	// Study medication
	r.addRuleSet("study_medication_baseline", "Study medication (baseline)", true, studyMedicationBaselineChecks(p))
	r.addRuleSet("study_medication_followup", "Study medication (follow-up)", true, studyMedicationFollowupChecks(p))

	r.logger.WithField("form_count", len(r.ruleSets)).Info("Initialized CRF rule sets")
}

func (r *Registry) addRuleSet(name, title string, requireVisit bool, checks []formvalidator.Check) {
	r.ruleSets[name] = &RuleSet{
		Name:         name,
		Title:        title,
		RequireVisit: requireVisit,
		Checks:       checks,
	}
}

// Get returns the rule set for form.
func (r *Registry) Get(form string) (*RuleSet, error) {
	rs, ok := r.ruleSets[form]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownForm, form)
	}
	return rs, nil
}

// Names returns the registered form names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ruleSets))
	for name := range r.ruleSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Forms returns every rule set ordered by name.
func (r *Registry) Forms() []*RuleSet {
	names := r.Names()
	out := make([]*RuleSet, 0, len(names))
	for _, name := range names {
		out = append(out, r.ruleSets[name])
	}
	return out
}

// Validate looks up the rule set for sub.Form and runs it.
func (r *Registry) Validate(ctx context.Context, sub *domain.Submission) error {
	rs, err := r.Get(sub.Form)
	if err != nil {
		return err
	}
	return rs.Validate(ctx, sub)
}

func isBaseline(p Providers, v *formvalidator.FormValidator) bool {
	return v.HasVisit() && p.Schedule.IsBaseline(v.Visit())
}

// check adapts a context-free rule to formvalidator.Check.
func check(fn func(v *formvalidator.FormValidator) error) formvalidator.Check {
	return func(_ context.Context, v *formvalidator.FormValidator) error {
		return fn(v)
	}
}
