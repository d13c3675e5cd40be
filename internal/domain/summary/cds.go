package summary

import (
	"fmt"
	"strconv"
)

const (
	a1cLowerBound = 4.0
	a1cUpperBound = 5.6
)

// Classify derives the placeholder CDS recommendation from the latest
// Hemoglobin A1c observation. The observations arrive newest first, so the
// first record with a value drives the classification.
func Classify(observations []ClinicalRecord) Recommendation {
	if len(observations) == 0 || observations[0].Value == nil {
		return Recommendation{
			Text: "Hemoglobin A1c levels have not been reported for this patient. Unable to make CDS recommendation.",
		}
	}

	value := *observations[0].Value
	pct := strconv.FormatFloat(value, 'f', -1, 64)

	switch {
	case value > a1cUpperBound:
		return Recommendation{
			Text: fmt.Sprintf("The patient's Hemoglobin A1c level is %s%%, which is above the normal range of 4%% and 5.6%%. The patient is considered HIGH RISK.", pct),
		}
	case value >= a1cLowerBound:
		return Recommendation{
			Text: fmt.Sprintf("The patient's Hemoglobin A1c level is %s%%, which is within the normal range of 4%% and 5.6%%. The patient is considered LOW RISK.", pct),
		}
	default:
		return Recommendation{
			Text: fmt.Sprintf("The patient's Hemoglobin A1c level is %s%%, which is below the normal range of 4%% and 5.6%%.", pct),
		}
	}
}
