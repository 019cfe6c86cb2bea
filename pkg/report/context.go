package report

import (
	"fmt"

	"bullion-hq/assay/pkg/marketdata"
)

// Static baseline bullets. They carry the context block whenever a live
// source is unavailable, so a report never goes out with an empty section.
var (
	goldStaticETF      = "- GLD/IAU: movimentos recentes indicam entradas moderadas e recomposição parcial de posição."
	goldStaticCFTC     = "- CFTC Net Position (GC): leve aumento na posição líquida comprada (estimativa)."
	goldStaticReserves = "- Reservas LBMA/COMEX: estoques estáveis na margem, sem inflexões relevantes."
	goldStaticMacro    = "- Macro: DXY lateral e yields dos Treasuries levemente mais altos, limitando altas no ouro."

	silverStatic = []string{
		"- SLV/SIVR: entradas líquidas moderadas; sinal de demanda tática por proteção/indústria.",
		"- CFTC (SI): leve alta na posição líquida comprada entre especuladores (estimativa).",
		"- LBMA/COMEX: estoques de prata estáveis, sem choques relevantes de oferta física.",
		"- Oferta/Reciclagem: produção estável; reciclagem firme com preços recentes.",
		"- Indústria/Fotovoltaico: demanda estrutural positiva com expansão de painéis solares.",
		"- DXY: estabilidade recente; dólar ainda limita movimentos de alta.",
		"- Treasuries: yields em leve alta; custo de oportunidade pesa na ponta comprada.",
		"- Research: casas indicam assimetria positiva se indústria acelerar; ainda cautela no curto prazo.",
	}
	silverDXYSlot = 5

	copperStatic = []string{
		"- CPER/JJC: fluxos ligeiramente positivos; busca por exposição ao ciclo industrial.",
		"- CFTC (HG): especuladores com leve alta na posição líquida comprada (estimativa).",
		"- Inventários LME/COMEX/SHFE: níveis moderados; estoques chineses sob observação.",
		"- Oferta: minas e fundições reportam manutenção e gargalos pontuais; custo de energia impacta.",
		"- Demanda China/PMIs/Infra: sinais mistos; impulsos de infraestrutura sustentam consumo.",
		"- DXY: dólar firme pode limitar ralis de commodities denominadas em USD.",
		"- Treasuries/global rates: yields estáveis a levemente mais altos; apetite por risco moderado.",
		"- Research: foco em balanço tight 2025+, investimentos em transição energética elevam demanda.",
	}
	copperDXYSlot = 5
)

// goldContext overlays live quotes, reserves, and the dollar index on the
// static baseline. The CFTC line stays static while there is no free
// commitment-of-traders source.
func goldContext(snap *marketdata.Snapshot) []string {
	lines := make([]string, 0, 8)

	if snap != nil {
		if spot, ok := snap.Quotes[marketdata.SymbolGoldSpot]; ok {
			lines = append(lines, fmt.Sprintf("- XAU/USD (spot): US$ %.2f.", spot))
		}
		if fut, ok := snap.Quotes[marketdata.SymbolGoldFutures]; ok {
			lines = append(lines, fmt.Sprintf("- Futuros COMEX (GC=F): US$ %.2f.", fut))
		}
	}

	lines = append(lines, goldETFLine(snap))
	lines = append(lines, goldStaticCFTC)
	lines = append(lines, goldReservesLine(snap))
	lines = append(lines, goldMacroLine(snap))
	return lines
}

func goldETFLine(snap *marketdata.Snapshot) string {
	if snap == nil {
		return goldStaticETF
	}
	gld, hasGLD := snap.Quotes[marketdata.SymbolGLD]
	iau, hasIAU := snap.Quotes[marketdata.SymbolIAU]
	switch {
	case hasGLD && hasIAU:
		return fmt.Sprintf("- ETFs de ouro: GLD US$ %.2f; IAU US$ %.2f (últimos fechamentos).", gld, iau)
	case hasGLD:
		return fmt.Sprintf("- ETFs de ouro: GLD US$ %.2f (último fechamento).", gld)
	case hasIAU:
		return fmt.Sprintf("- ETFs de ouro: IAU US$ %.2f (último fechamento).", iau)
	default:
		return goldStaticETF
	}
}

func goldReservesLine(snap *marketdata.Snapshot) string {
	if snap == nil || snap.Reserves == nil || snap.Reserves.Total == nil {
		return goldStaticReserves
	}
	total := snap.Reserves.Total
	line := fmt.Sprintf("- Reservas mundiais (World Bank, %s): total US$ %s", total.Date, formatUSD(total.Value))
	if gold := snap.Reserves.Gold; gold != nil {
		line += fmt.Sprintf("; parcela em ouro US$ %s", formatUSD(gold.Value))
	}
	return line + "."
}

func goldMacroLine(snap *marketdata.Snapshot) string {
	if snap == nil || snap.DollarIndex == nil {
		return goldStaticMacro
	}
	return dxyLine(snap.DollarIndex)
}

// silverContext and copperContext are the static baselines with the DXY
// bullet swapped for the live FRED observation when available.
func silverContext(snap *marketdata.Snapshot) []string {
	return staticWithDXY(silverStatic, silverDXYSlot, snap)
}

func copperContext(snap *marketdata.Snapshot) []string {
	return staticWithDXY(copperStatic, copperDXYSlot, snap)
}

func staticWithDXY(baseline []string, slot int, snap *marketdata.Snapshot) []string {
	lines := make([]string, len(baseline))
	copy(lines, baseline)
	if snap != nil && snap.DollarIndex != nil {
		lines[slot] = dxyLine(snap.DollarIndex)
	}
	return lines
}

func dxyLine(obs *marketdata.Observation) string {
	return fmt.Sprintf("- DXY (índice dólar amplo, FRED %s): %.2f.", obs.Date, obs.Value)
}

// formatUSD renders World Bank aggregates in trillions or billions, the
// scale the reports talk in.
func formatUSD(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.1f tri", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.1f bi", v/1e9)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
