package query

import (
	"context"
	"encoding/json"

	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/obslog"
)

// Budget is the response-size safety limit from spec §4.6: a hard ceiling
// and a lower, non-fatal warning threshold, both expressed in estimated
// tokens.
type Budget struct {
	MaxTokens  int
	WarnTokens int
}

// EstimateTokens is the token estimator spec §4.6 and §9 leave as an
// implementation detail ("chars/4 ... must be monotonic in response size").
// It's deliberately crude: monotonic in the serialized byte length is all
// the spec requires, and chars/4 is the teacher's own rough estimator for
// LLM-context-sized payloads.
func EstimateTokens(serialized []byte) int {
	return len(serialized) / 4
}

// Check serializes payload, estimates its token count, and enforces the
// budget (spec §4.6): at or above WarnTokens it logs a non-fatal warning;
// at or above MaxTokens it returns a structured ResponseSizeExceeded error
// instead of the payload.
func (b Budget) Check(ctx context.Context, payload any) error {
	serialized, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(errs.Internal, err, "serialize response for size budget check")
	}
	tokens := EstimateTokens(serialized)

	if tokens >= b.MaxTokens {
		return errs.New(errs.ResponseSizeExceeded,
			"response is approximately %d tokens, exceeding the %d token limit", tokens, b.MaxTokens,
		).WithDetails(map[string]any{
			"actual_tokens": tokens,
			"max_tokens":    b.MaxTokens,
			"suggestion":    Suggestion,
		})
	}
	if tokens >= b.WarnTokens {
		obslog.From(ctx).Warn().
			Int("estimated_tokens", tokens).
			Int("warn_threshold", b.WarnTokens).
			Msg("response approaching size budget ceiling")
	}
	return nil
}

// Suggestion is the advisory string attached to a ResponseSizeExceeded error
// (spec §4.6: "advising the caller to use pagination, summary mode, or
// tighter filters").
const Suggestion = "reduce the response size: use pagination (lower limit), mode=\"summary\", or narrower filters"
