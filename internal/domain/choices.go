package domain

// Choice is one option of a choice list: the stored code and the label shown
// to data-entry staff.
type Choice struct {
	Name        Code   `json:"name"`
	DisplayName string `json:"display_name"`
}

// Choices is an ordered choice list.
type Choices []Choice

// Display returns the label for code, falling back to the code itself when
// the code is not part of the list.
func (c Choices) Display(code Code) string {
	for _, choice := range c {
		if choice.Name == code {
			return choice.DisplayName
		}
	}
	return string(code)
}

// Contains reports whether code is one of the listed options.
func (c Choices) Contains(code Code) bool {
	for _, choice := range c {
		if choice.Name == code {
			return true
		}
	}
	return false
}

var (
	YesNoNA = Choices{
		{YES, "Yes"},
		{NO, "No"},
		{NOT_APPLICABLE, "Not applicable"},
	}

	AssessmentTypes = Choices{
		{IN_PERSON, "In person"},
		{TELEPHONE, "Telephone"},
		{OTHER, "Other"},
	}

	AssessmentWhoChoices = Choices{
		{PATIENT, "Patient"},
		{NEXT_OF_KIN, "Next of kin"},
		{OTHER, "Other"},
		{NOT_APPLICABLE, "Not applicable"},
	}

	VisitInfoSources = Choices{
		{PATIENT, "Patient"},
		{COLLATERAL_HISTORY, "Collateral history from relative/guardian"},
		{HOSPITAL_NOTES, "Hospital notes"},
		{OUTPATIENT_CARDS, "Outpatient cards"},
		{OTHER, "Other"},
	}

	SurvivalStatuses = Choices{
		{ALIVE, "Alive"},
		{DEAD, "Deceased"},
		{UNKNOWN, "Unknown"},
	}
)
