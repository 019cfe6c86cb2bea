package report

import "bullion-hq/assay/pkg/marketdata"

// The prompts are the published wording of the reports and are kept
// verbatim, including typography. Section 9 and 10 answers come from the
// model; the context block only feeds sections 1-8.

var goldSpec = Spec{
	Key:         KeyGold,
	Pair:        "Ouro (XAU/USD)",
	CounterKey:  "diario_ouro",
	Temperature: 0.4,
	MaxTokens:   1600,
	SystemPrompt: "Você é um analista financeiro sênior. Escreva em PT-BR, objetivo e claro, " +
		"com dados e interpretação executiva. Evite jargão desnecessário; mostre raciocínio econômico coerente.",
	userPromptFormat: `Gere um **Relatório Diário — Ouro (XAU/USD)** estruturado nas seções abaixo.
Seja específico e conciso, com foco em implicações de preço e contexto institucional.

1) Fluxos em ETFs de Ouro (GLD/IAU)
2) Posição Líquida em Futuros (CFTC/CME)
3) Reservas (LBMA/COMEX) e Estoques
4) Fluxos de Bancos Centrais
5) Mercado de Mineração
6) Câmbio e DXY (Dollar Index)
7) Taxas de Juros e Treasuries
8) Notas de Instituições Financeiras / Research
9) Interpretação Executiva (bullet points objetivos, até 5 linhas)
10) Conclusão (1 parágrafo, inclua leitura de curto e médio prazo)

Baseie-se no contexto factual levantado:
%s`,
	snapshot: marketdata.SnapshotRequest{
		Symbols: []string{
			marketdata.SymbolGoldSpot,
			marketdata.SymbolGoldFutures,
			marketdata.SymbolGLD,
			marketdata.SymbolIAU,
		},
		SpotSymbol: marketdata.SymbolGoldSpot,
		MetalCode:  "XAU",
		Reserves:   true,
	},
	contextLines: goldContext,
}

var silverSpec = Spec{
	Key:         KeySilver,
	Pair:        "Prata (XAG/USD)",
	CounterKey:  "diario_prata",
	Temperature: 0.4,
	MaxTokens:   1800,
	SystemPrompt: "Você é um analista financeiro sênior. Escreva em PT-BR, objetivo e claro, " +
		"com dados e interpretação executiva. Evite jargão; mantenha coesão macro/indústria.",
	userPromptFormat: `Gere um **Relatório Diário — Prata (XAG/USD)** estruturado nos **10 tópicos abaixo**.
Seja específico e conciso. Numere exatamente de 1 a 10.

1) Fluxos em ETFs de Prata (SLV/SIVR)
2) Posição Líquida em Futuros (CFTC/CME — SI)
3) Reservas (LBMA/COMEX) e Estoques
4) Oferta de Mineração e Reciclagem
5) Demanda Industrial e Fotovoltaico
6) Câmbio e DXY (Dollar Index)
7) Taxas de Juros e Treasuries
8) Notas de Instituições Financeiras / Research
9) Interpretação Executiva (bullet points objetivos, até 5 linhas)
10) Conclusão (1 parágrafo, curto e médio prazo)

Baseie-se no contexto factual levantado:
%s`,
	contextLines: silverContext,
}

var copperSpec = Spec{
	Key:         KeyCopper,
	Pair:        "Cobre (XCU/USD)",
	CounterKey:  "diario_cobre",
	Temperature: 0.4,
	MaxTokens:   1800,
	SystemPrompt: "Você é um analista financeiro sênior. Escreva em PT-BR, objetivo e claro. " +
		"Conecte macro (dólar/juros) à dinâmica industrial/global do cobre.",
	userPromptFormat: `Gere um **Relatório Diário — Cobre (XCU/USD)** estruturado nos **10 tópicos abaixo**.
Seja específico e conciso. Numere exatamente de 1 a 10.

1) Fluxos em ETFs de Cobre (CPER/JJC)
2) Posição Líquida em Futuros (CFTC/COMEX — HG) e LME (se disponível)
3) Inventários (LME/COMEX/SHFE)
4) Oferta de Mineração e Fundições
5) Demanda Industrial e China/PMIs/Infra
6) Câmbio e DXY (Dollar Index)
7) Taxas de Juros (Treasuries) e apetite por risco
8) Notas de Instituições Financeiras / Research
9) Interpretação Executiva (bullet points objetivos, até 5 linhas)
10) Conclusão (1 parágrafo, curto e médio prazo)

Baseie-se no contexto factual levantado:
%s`,
	contextLines: copperContext,
}
