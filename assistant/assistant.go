// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Replies used when the model fails or answers nothing
const (
	FallbackChat        = "Ocorreu um erro na comunicação com meu cérebro digital. Verifique sua conexão."
	FallbackEmptyReply  = "Desculpe, não consegui processar sua resposta."
	FallbackReportIntro = "Relatório de eleição gerado conforme normas da NR-5."
	FallbackImport      = "Importação concluída. A análise inteligente está temporariamente indisponível."
	DefaultImport       = "Análise concluída com sucesso."
)

var ErrUnavailable = errors.New("assistant not configured")

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Unavailable is installed when no API key is configured
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Gemini calls the Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

// Ask never fails: errors yield onError, empty answers onEmpty
func Ask(ctx context.Context, g Generator, prompt, onError, onEmpty string) string {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	reply, err := g.Generate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			slog.Error("assistant request failed", "error", err)
		}
		return onError
	}
	if reply = strings.TrimSpace(reply); reply == "" {
		return onEmpty
	}
	return reply
}

// ElectionContext is the snapshot given to the model with every question
type ElectionContext struct {
	CompanyName   string
	Mandate       string
	Employees     int
	Registrations int
	Votes         int
}

func ChatPrompt(c ElectionContext, question string) string {
	return fmt.Sprintf(`Você é um assistente especialista em CIPA e na norma regulamentadora NR-5 brasileira.
Dados atuais da empresa %s:
- Total de colaboradores: %d
- Candidatos inscritos: %d
- Votos computados: %d
- Mandato atual: %s

Responda de forma profissional, clara e baseada na lei. Se o usuário perguntar algo fora do contexto de CIPA ou Segurança do Trabalho, peça gentilmente para focar no tema.

Pergunta do usuário: %s`,
		c.CompanyName, c.Employees, c.Registrations, c.Votes, c.Mandate, question)
}

func ReportIntroPrompt(company string, candidates, votes int) string {
	return fmt.Sprintf("Gere um parágrafo profissional e formal de introdução para um relatório de eleição da CIPA "+
		"baseado nos seguintes dados: Empresa: %s, Candidatos: %d, Votos Totais: %d.", company, candidates, votes)
}

func ImportAnalysisPrompt(company string, total int, sectors, roles []string) string {
	return fmt.Sprintf(`Analise brevemente os dados importados para o Portal CIPA da empresa %s.
Total Colaboradores Importados: %d.
Principais Setores: %s.
Principais Cargos: %s.

Gere um parágrafo executivo e sofisticado (máximo 3 frases) confirmando o sucesso da importação e comentando sobre a representatividade e diversidade dos setores para a formação de uma CIPA equilibrada conforme NR-5. Use tom profissional e encorajador. Não use markdown, apenas texto corrido.`,
		company, total, TopCounts(sectors, 5), TopCounts(roles, 5))
}

// TopCounts formats the n most frequent values as "A (3), B (1)".
// Blank values count as "Não informado".
func TopCounts(values []string, n int) string {
	counts := make(map[string]int)
	for _, v := range values {
		if v == "" {
			v = "Não informado"
		}
		counts[v]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s (%d)", k, counts[k])
	}
	return strings.Join(parts, ", ")
}
