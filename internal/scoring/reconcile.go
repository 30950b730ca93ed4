package scoring

import (
	"fmt"
	"math"
)

// DiscrepancyTolerance is the largest client/server total difference that
// passes without a warning.
const DiscrepancyTolerance = 2

// Reconcile compares what the client claims against the server record. The
// server record is always the accepted one; a large difference only produces
// a warning.
func Reconcile(server ScoreRecord, client ClientAssertion) ReconciliationOutcome {
	out := ReconciliationOutcome{
		Server:      server,
		ClientTotal: client.TotalScore,
		Accepted:    server,
	}
	if client.TotalScore == nil {
		return out
	}

	out.Discrepancy = math.Abs(float64(server.TotalScore) - *client.TotalScore)
	if out.Discrepancy > DiscrepancyTolerance {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"score mismatch: client=%g server=%d", *client.TotalScore, server.TotalScore))
	}
	return out
}
