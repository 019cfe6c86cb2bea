// Package report turns market context into the daily commodity reports.
//
// A Spec describes one job: the pair label, the counter key, the prompts,
// and which market facts to gather. The Runner executes a spec end to end:
// daily lock, counter, market snapshot, prompt assembly, LLM generation
// through the failover chain, Telegram delivery, and the run ledger.
package report

import (
	"fmt"
	"strings"

	"bullion-hq/assay/pkg/marketdata"
)

// Job keys. These are the config and ledger identifiers for the jobs.
const (
	KeyGold   = "gold"
	KeySilver = "silver"
	KeyCopper = "copper"
)

// Spec describes one daily report job.
type Spec struct {
	// Key is the job key (gold, silver, copper).
	Key string

	// Pair is the published pair label, e.g. "Ouro (XAU/USD)".
	Pair string

	// CounterKey is the report counter key shared with the legacy layout.
	CounterKey string

	// Temperature and MaxTokens parameterize the generation request.
	Temperature float64
	MaxTokens   int

	// SystemPrompt sets the analyst persona for this metal.
	SystemPrompt string

	// userPromptFormat takes the factual context block as its single
	// fmt argument.
	userPromptFormat string

	// snapshot names the market facts gathered before prompting.
	snapshot marketdata.SnapshotRequest

	// contextLines builds the factual context bullets, overlaying live
	// snapshot data on the static baseline. A nil snapshot yields the
	// baseline only.
	contextLines func(snap *marketdata.Snapshot) []string
}

// UserPrompt renders the user message around the factual context block.
func (s Spec) UserPrompt(contexto string) string {
	return fmt.Sprintf(s.userPromptFormat, contexto)
}

// ContextBlock builds the factual context for the prompt.
func (s Spec) ContextBlock(snap *marketdata.Snapshot) string {
	return strings.Join(s.contextLines(snap), "\n")
}

// SnapshotRequest returns the market facts this job wants gathered.
func (s Spec) SnapshotRequest() marketdata.SnapshotRequest {
	return s.snapshot
}

// keyOrder is the publication order of the jobs.
var keyOrder = []string{KeyGold, KeySilver, KeyCopper}

var specs = map[string]Spec{
	KeyGold:   goldSpec,
	KeySilver: silverSpec,
	KeyCopper: copperSpec,
}

// SpecFor returns the spec for a job key.
func SpecFor(key string) (Spec, error) {
	spec, ok := specs[key]
	if !ok {
		return Spec{}, fmt.Errorf("unknown report job %q", key)
	}
	return spec, nil
}

// Keys returns the job keys in publication order.
func Keys() []string {
	out := make([]string, len(keyOrder))
	copy(out, keyOrder)
	return out
}
