package report

import (
	"strings"
	"testing"

	"bullion-hq/assay/pkg/marketdata"
)

func TestSpecFor(t *testing.T) {
	spec, err := SpecFor(KeySilver)
	if err != nil {
		t.Fatalf("SpecFor failed: %v", err)
	}
	if spec.Pair != "Prata (XAG/USD)" || spec.CounterKey != "diario_prata" {
		t.Errorf("unexpected spec: %+v", spec)
	}
	if spec.MaxTokens != 1800 || spec.Temperature != 0.4 {
		t.Errorf("unexpected generation parameters: %+v", spec)
	}

	if _, err := SpecFor("platinum"); err == nil {
		t.Error("expected error for unknown job")
	}
}

func TestKeys_PublicationOrder(t *testing.T) {
	keys := Keys()
	want := []string{KeyGold, KeySilver, KeyCopper}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	// Every key resolves.
	for _, key := range keys {
		if _, err := SpecFor(key); err != nil {
			t.Errorf("SpecFor(%q) failed: %v", key, err)
		}
	}
}

func TestUserPrompt_EmbedsContext(t *testing.T) {
	spec, _ := SpecFor(KeyGold)
	prompt := spec.UserPrompt("- fato um\n- fato dois")

	if !strings.Contains(prompt, "Relatório Diário — Ouro (XAU/USD)") {
		t.Error("prompt missing report heading")
	}
	if !strings.Contains(prompt, "1) Fluxos em ETFs de Ouro (GLD/IAU)") {
		t.Error("prompt missing first section")
	}
	if !strings.HasSuffix(prompt, "Baseie-se no contexto factual levantado:\n- fato um\n- fato dois") {
		t.Errorf("context not at prompt tail:\n%s", prompt)
	}
}

func TestUserPrompt_TenNumberedSections(t *testing.T) {
	for _, key := range Keys() {
		spec, _ := SpecFor(key)
		prompt := spec.UserPrompt("ctx")
		for _, section := range []string{"1)", "5)", "9) Interpretação Executiva", "10) Conclusão"} {
			if !strings.Contains(prompt, section) {
				t.Errorf("%s prompt missing %q", key, section)
			}
		}
	}
}

func TestGoldSnapshotRequest(t *testing.T) {
	req := goldSpec.SnapshotRequest()
	if req.SpotSymbol != marketdata.SymbolGoldSpot || req.MetalCode != "XAU" {
		t.Errorf("unexpected spot fallback wiring: %+v", req)
	}
	if !req.Reserves {
		t.Error("gold should request reserves")
	}
	if len(req.Symbols) != 4 {
		t.Errorf("expected 4 symbols, got %v", req.Symbols)
	}
}

func TestSilverCopperSnapshotRequests(t *testing.T) {
	// Silver and copper only consume the dollar index; their requests
	// carry no Yahoo symbols and no reserve fetch.
	for _, spec := range []Spec{silverSpec, copperSpec} {
		req := spec.SnapshotRequest()
		if len(req.Symbols) != 0 || req.Reserves {
			t.Errorf("%s request too broad: %+v", spec.Key, req)
		}
	}
}
