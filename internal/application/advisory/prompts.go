package advisory

import (
	"fmt"
	"strings"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
)

// EthicalNotice must appear in every strategic opinion.
const EthicalNotice = "Esta análise é uma simulação estatística baseada em padrões decisórios anteriores, não garantindo o resultado do processo."

const dossierPrompt = `ATUE COMO JURIMETRISTA. Crie um Perfil do juiz: %s.
DADOS:
%s
SAÍDA: Perfil comportamental, principais focos, tendência (rígido/garantista).`

const privilegedBlock = `
⚠️ INFORMAÇÃO PRIVILEGIADA (DOSSIÊ JÁ GERADO):
Abaixo está o perfil comportamental deste juiz, gerado previamente.
Use-o para refinar suas sugestões:
---
%s
---
`

const opinionPrompt = `Você é um Consultor Jurídico Especialista em Processo Civil Brasileiro que atua como SIMULADOR DECISÓRIO, utilizando um PERFIL ESTATÍSTICO DE JUIZ previamente definido.

CONTEXTO:
Juiz: %s
Tema do Processo: %s
Aderência ao histórico: %.1f%%
- Estilo: Focado em dados estatísticos e jurisprudência consolidada.
%s
INSTRUÇÕES:
1. LEITURA CRÍTICA DA PETIÇÃO
Analise a estrutura lógica, a clareza dos pedidos, a qualidade da fundamentação jurídica, a aderência ao perfil decisório do juiz e o uso (ou ausência) das normas e precedentes preferidos pelo juiz.

2. ANÁLISE SOB A ÓTICA DO JUIZ CLONADO
Simule como o juiz estatístico tende a receber os argumentos apresentados, valorizar ou desconsiderar provas, enquadrar juridicamente os pedidos e aplicar normas e precedentes.

3. PROBABILIDADE ESTATÍSTICA DE DESFECHO
Estime, com percentuais e justificativas:
- Procedência, parcial procedência e improcedência
- Acolhimento de preliminares
- Risco de indeferimento liminar

4. FUNDAMENTAÇÃO PROVÁVEL DA SENTENÇA
Liste artigos de lei, jurisprudências, teses que tendem a ser acolhidas e teses que tendem a ser rejeitadas.

5. SUGESTÕES DE MELHORIA DA PETIÇÃO
Indique o que reforçar, argumentos a reescrever, jurisprudências a incluir e ajustes de linguagem.

6. ALERTA ÉTICO
Inclua: "%s"

SAÍDA FINAL:
- Diagnóstico jurídico estratégico
- Tabela de riscos
- Sugestões práticas e acionáveis
- Resumo executivo para o advogado

PETIÇÃO: %s`

// DossierContext renders one line per record.
func DossierContext(records []*judiciary.CaseRecord) string {
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "- Tema '%s', Risco: %s\n", r.Topic, r.Label)
	}
	return b.String()
}

func buildDossierPrompt(adjudicator string, records []*judiciary.CaseRecord) string {
	return fmt.Sprintf(dossierPrompt, adjudicator, DossierContext(records))
}

func buildOpinionPrompt(adjudicator, topic string, score float64, dossier, petition string) string {
	extra := ""
	if strings.TrimSpace(dossier) != "" {
		extra = fmt.Sprintf(privilegedBlock, dossier)
	}
	return fmt.Sprintf(opinionPrompt, adjudicator, topic, score, extra, EthicalNotice, petition)
}

//Personal.AI order the ending
