package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"prospect-crm/internal/domain"
	"prospect-crm/internal/scoring"
	"prospect-crm/internal/service"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	evaluator := service.NewQualificationService(service.NewRuleQualifier(), nil, 5*time.Second, logger)
	p := &prompter{reader: bufio.NewReader(os.Stdin), out: os.Stdout}

	for {
		fmt.Fprintln(p.out, "\n===== Prospect Scoring =====")
		fmt.Fprintln(p.out, "[R] Rapid checklist (si/no)")
		fmt.Fprintln(p.out, "[E] Evaluador con reglas locales")
		fmt.Fprintln(p.out, "[Q] Salir")
		choice, ok := p.ask("Seleccion: ")
		if !ok {
			return
		}
		switch strings.ToUpper(choice) {
		case "R":
			runRapid(p)
		case "E":
			if err := runEvaluator(context.Background(), p, evaluator); err != nil {
				fmt.Fprintf(p.out, "error: %v\n", err)
			}
		case "Q":
			return
		default:
			fmt.Fprintln(p.out, "Seleccion invalida.")
		}
	}
}

type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// ask devuelve false cuando stdin se cerro.
func (p *prompter) ask(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (p *prompter) askYesNo(prompt string) bool {
	for {
		answer, ok := p.ask(prompt + " [s/n]: ")
		if !ok {
			return false
		}
		switch strings.ToLower(answer) {
		case "s", "si", "y", "yes":
			return true
		case "n", "no", "":
			return false
		}
		fmt.Fprintln(p.out, "Responde s o n.")
	}
}

// askOptionalInt devuelve nil si la respuesta esta vacia o no es un numero.
func (p *prompter) askOptionalInt(prompt string) *int {
	line, ok := p.ask(prompt + " (enter para omitir): ")
	if !ok || line == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(line, ",", ""))
	if err != nil {
		return nil
	}
	return &v
}

func (p *prompter) askOptionalFloat(prompt string) *float64 {
	line, ok := p.ask(prompt + " (enter para omitir): ")
	if !ok || line == "" {
		return nil
	}
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return nil
	}
	return &v
}

func (p *prompter) askValueProposition() domain.ValueProposition {
	answer, _ := p.ask("Mayor oportunidad [visuals/leads/engagement/enter=unknown]: ")
	v := domain.ValueProposition(strings.ToLower(answer))
	if !v.Valid() {
		return domain.ValuePropUnknown
	}
	return v
}

func runRapid(p *prompter) {
	flags := scoring.RapidFlags{
		IsBusiness:          p.askYesNo("Es cuenta de negocio?"),
		HasInconsistentGrid: p.askYesNo("Grid inconsistente?"),
		HasLowEngagement:    p.askYesNo("Engagement bajo?"),
		HasNoClearCTA:       p.askYesNo("Sin CTA claro?"),
		ValueProposition:    p.askValueProposition(),
	}
	followers := p.askOptionalInt("Seguidores")
	printRapid(p.out, service.RapidEvaluate(flags, followers))
}

func printRapid(out io.Writer, eval service.RapidEvaluation) {
	fmt.Fprintf(out, "\nRapid score: %d / 75\n", eval.LeadScore)
	printBreakdown(out, eval.Breakdown)
	printTags(out, eval.PainPoints, eval.Goals)
	fmt.Fprintf(out, "Siguiente accion: %s\n", eval.NextAction)
}

func runEvaluator(ctx context.Context, p *prompter, evaluator *service.QualificationService) error {
	handle, _ := p.ask("Instagram handle: ")
	metrics := domain.ProfileMetrics{
		InstagramHandle: handle,
		FollowerCount:   p.askOptionalInt("Seguidores"),
		PostCount:       p.askOptionalInt("Posts"),
		AvgLikes:        p.askOptionalFloat("Likes promedio"),
		AvgComments:     p.askOptionalFloat("Comentarios promedio"),
	}
	if bio, ok := p.ask("Bio (enter para omitir): "); ok && bio != "" {
		metrics.Biography = &bio
	}
	profitability, _ := p.ask("Como monetiza la cuenta? ")
	visuals, _ := p.ask("Impresion del branding visual? ")
	strategy, _ := p.ask("Mayor oportunidad estrategica? ")

	eval, err := evaluator.Evaluate(ctx, service.EvaluationRequest{
		Metrics: metrics,
		Assessment: service.HumanAssessment{
			Profitability: profitability,
			Visuals:       visuals,
			Strategy:      strategy,
		},
	})
	if err != nil {
		return err
	}
	printEvaluation(p.out, eval)
	return nil
}

func printEvaluation(out io.Writer, eval service.Evaluation) {
	fmt.Fprintf(out, "\nLead score: %d / 100 (%s)\n", eval.LeadScore, eval.Tier)
	printBreakdown(out, eval.Breakdown)
	printTags(out, eval.PainPoints, eval.Goals)
	fmt.Fprintf(out, "Resumen: %s\n", eval.Summary)
	fmt.Fprintf(out, "Siguiente accion: %s\n", eval.NextAction)
}

func printBreakdown(out io.Writer, factors []scoring.Factor) {
	for _, f := range factors {
		fmt.Fprintf(out, "  %+4d  %s\n", f.Points, f.Name)
	}
}

func printTags(out io.Writer, pains []domain.PainPoint, goals []domain.Goal) {
	if len(pains) > 0 {
		fmt.Fprintln(out, "Pain points:")
		for _, pp := range pains {
			fmt.Fprintf(out, "  - %s\n", pp)
		}
	}
	if len(goals) > 0 {
		fmt.Fprintln(out, "Goals:")
		for _, g := range goals {
			fmt.Fprintf(out, "  - %s\n", g)
		}
	}
}
