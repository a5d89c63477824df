package scoring

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"prospect-crm/internal/domain"
)

// lowEngagementRate es el porcentaje (likes+comments)/followers por debajo del cual
// la cuenta se considera de bajo engagement.
const lowEngagementRate = 1.0

// negationWindow es cuantas palabras despues de un negador quedan negadas.
const negationWindow = 3

var (
	wordPattern = regexp.MustCompile(`[\pL\pN]+(?:['’]\pL+)?`)
	negators    = map[string]bool{
		"not": true, "no": true, "never": true, "without": true, "lacks": true, "lacking": true,
		"isn't": true, "isn’t": true, "aren't": true, "aren’t": true, "doesn't": true, "doesn’t": true,
		"don't": true, "don’t": true, "hardly": true, "barely": true,
	}
	clauseBreakers = map[string]bool{"but": true, "though": true, "although": true, "however": true, "yet": true}
)

type keywordRule struct {
	label    string
	keywords []string
}

type keywordClassifier struct {
	rules     []keywordRule
	negatable bool
}

type keywordSpan struct {
	start, end int
	rule       int
}

// newKeywordClassifier arma un clasificador por conteo de keywords. Ante empate gana la
// regla que aparece primero.
func newKeywordClassifier(rules []keywordRule) *keywordClassifier {
	return &keywordClassifier{rules: rules}
}

// withNegation hace que una keyword negada ("not polished") no sume para su regla. Con
// exactamente dos reglas suma para la contraria.
func (c *keywordClassifier) withNegation() *keywordClassifier {
	c.negatable = true
	return c
}

// classify devuelve la etiqueta con mas coincidencias, o "" si no hay ninguna.
func (c *keywordClassifier) classify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	spans := c.spans(text)
	var negated map[int]bool
	if c.negatable {
		negated = negatedWords(text, spans)
	}

	hits := make([]int, len(c.rules))
	for _, sp := range spans {
		switch {
		case !negated[sp.start]:
			hits[sp.rule]++
		case len(c.rules) == 2:
			hits[1-sp.rule]++
		}
	}

	best, bestHits := "", 0
	for i, r := range c.rules {
		if hits[i] > bestHits {
			best, bestHits = r.label, hits[i]
		}
	}
	return best
}

func (c *keywordClassifier) matches(text string) bool {
	return c.classify(text) != ""
}

// spans encuentra cada aparicion de keyword con limites de palabra. Si dos apariciones se
// solapan queda la mas larga, asi "high quality" no cuenta tambien como "quality".
func (c *keywordClassifier) spans(text string) []keywordSpan {
	var found []keywordSpan
	for i, r := range c.rules {
		for _, kw := range r.keywords {
			for from := 0; from < len(text); {
				idx := strings.Index(text[from:], kw)
				if idx < 0 {
					break
				}
				start := from + idx
				end := start + len(kw)
				if wordBoundary(text, start, end) {
					found = append(found, keywordSpan{start: start, end: end, rule: i})
				}
				from = start + 1
			}
		}
	}

	sort.SliceStable(found, func(a, b int) bool {
		la, lb := found[a].end-found[a].start, found[b].end-found[b].start
		if la != lb {
			return la > lb
		}
		return found[a].start < found[b].start
	})
	kept := found[:0]
	for _, sp := range found {
		overlaps := false
		for _, k := range kept {
			if sp.start < k.end && k.start < sp.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, sp)
		}
	}
	return kept
}

func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// negatedWords marca, por offset de inicio, las palabras dentro del alcance de un negador.
// El alcance termina con puntuacion de clausula, con "but" y similares, o tras
// negationWindow palabras. Un negador que forma parte de una keyword ("no theme") no niega.
func negatedWords(text string, spans []keywordSpan) map[int]bool {
	insideSpan := func(pos int) bool {
		for _, sp := range spans {
			if pos >= sp.start && pos < sp.end {
				return true
			}
		}
		return false
	}

	negated := make(map[int]bool)
	remaining, prevEnd := 0, 0
	for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		if strings.ContainsAny(text[prevEnd:loc[0]], ".,;:!?") {
			remaining = 0
		}
		prevEnd = loc[1]

		switch {
		case clauseBreakers[word]:
			remaining = 0
		case negators[word] && !insideSpan(loc[0]):
			remaining = negationWindow
		case remaining > 0:
			negated[loc[0]] = true
			remaining--
		}
	}
	return negated
}

var profitabilityClassifier = newKeywordClassifier([]keywordRule{
	{label: string(domain.ProfitabilityLow), keywords: []string{
		"hobby", "hobbyist", "personal account", "not monetizing", "not monetized", "no monetization",
		"doesn't sell", "does not sell", "nothing for sale", "just for fun", "side project",
	}},
	{label: string(domain.ProfitabilityHigh), keywords: []string{
		"high-ticket", "high ticket", "coaching", "coach", "consulting", "consultant", "agency",
		"premium", "luxury", "retainer", "mastermind", "course", "courses", "program", "services",
		"real estate", "clinic",
	}},
	{label: string(domain.ProfitabilityMedium), keywords: []string{
		"products", "product", "ecommerce", "e-commerce", "shop", "store", "merch", "affiliate",
		"sponsorships", "sponsored", "etsy", "digital downloads", "presets",
	}},
}).withNegation()

var visualsClassifier = newKeywordClassifier([]keywordRule{
	{label: string(domain.Yes), keywords: []string{
		"messy", "inconsistent", "random", "cluttered", "chaotic", "blurry", "low quality",
		"amateur", "no theme", "all over the place", "outdated", "unprofessional",
	}},
	{label: string(domain.No), keywords: []string{
		"polished", "consistent", "cohesive", "clean", "professional", "on-brand", "on brand",
		"aesthetic", "curated", "high quality",
	}},
}).withNegation()

var strategyClassifier = newKeywordClassifier([]keywordRule{
	{label: string(domain.ValuePropLeads), keywords: []string{
		"leads", "lead", "clients", "customers", "dm", "dms", "cta", "book", "booking", "calls",
		"sales", "convert", "conversion", "funnel", "inquiries", "link in bio",
	}},
	{label: string(domain.ValuePropVisuals), keywords: []string{
		"visual", "visuals", "grid", "branding", "brand", "aesthetic", "photos", "photography",
		"design", "feed", "look",
	}},
	{label: string(domain.ValuePropEngagement), keywords: []string{
		"engagement", "comments", "reach", "community", "followers", "grow", "growth",
		"interaction", "reels", "consistency", "posting",
	}},
})

var businessBioClassifier = newKeywordClassifier([]keywordRule{
	{label: "business", keywords: []string{
		"shop", "store", "coach", "coaching", "agency", "studio", "founder", "ceo", "services",
		"booking", "bookings", "order", "orders", "llc", "ltd", "inc", "clinic", "salon",
		"consulting", "official", "brand", "boutique", "bakery", "restaurant", "company",
		"appointments", "shipping", "wholesale",
	}},
})

var ctaBioClassifier = newKeywordClassifier([]keywordRule{
	{label: "cta", keywords: []string{
		"dm", "dm me", "link below", "link in bio", "book", "book now", "shop now", "click",
		"call", "email", "apply", "order now", "whatsapp", "message us", "contact", "👇",
	}},
})

var linkPattern = regexp.MustCompile(`(?i)(https?://|www\.|linktr\.ee|linkin\.bio|calendly\.com|beacons\.ai|\.com\b)`)

var pillarsFocusClassifier = newKeywordClassifier([]keywordRule{
	{label: "focused", keywords: []string{"i help", "helping", "we help", "for busy", "specializing in", "specialized in"}},
})

// ClassifyProfitability mapea la respuesta libre sobre monetizacion.
func ClassifyProfitability(text string) domain.ProfitabilityPotential {
	if label := profitabilityClassifier.classify(text); label != "" {
		return domain.ProfitabilityPotential(label)
	}
	return domain.ProfitabilityUnknown
}

// ClassifyVisuals mapea la impresion visual a hasInconsistentGrid.
func ClassifyVisuals(text string) domain.TriState {
	if label := visualsClassifier.classify(text); label != "" {
		return domain.TriState(label)
	}
	return domain.Unknown
}

// ClassifyStrategy mapea la mayor oportunidad estrategica a la propuesta de valor.
func ClassifyStrategy(text string) domain.ValueProposition {
	if label := strategyClassifier.classify(text); label != "" {
		return domain.ValueProposition(label)
	}
	return domain.ValuePropUnknown
}

// InferFromMetrics deriva las señales que salen del perfil (bio y metricas).
// Los campos de juicio humano quedan en unknown.
func InferFromMetrics(m domain.ProfileMetrics) domain.QualificationData {
	q := domain.DefaultQualificationData()

	if rate, ok := m.EngagementRate(); ok {
		q.HasLowEngagement = domain.TriStateFromBool(rate < lowEngagementRate)
	}

	if m.Biography == nil || strings.TrimSpace(*m.Biography) == "" {
		return q
	}
	bio := *m.Biography

	q.IsBusiness = domain.TriStateFromBool(businessBioClassifier.matches(bio))

	hasCTA := ctaBioClassifier.matches(bio)
	hasLink := linkPattern.MatchString(bio)
	q.HasNoClearCTA = domain.TriStateFromBool(!hasCTA)

	switch {
	case hasCTA && hasLink:
		q.SalesFunnelStrength = domain.FunnelStrong
	case hasCTA || hasLink:
		q.SalesFunnelStrength = domain.FunnelWeak
	default:
		q.SalesFunnelStrength = domain.FunnelNone
	}

	switch {
	case pillarsFocusClassifier.matches(bio):
		q.ContentPillarClarity = domain.PillarsVeryClear
	case strings.Count(bio, "|")+strings.Count(bio, "•")+strings.Count(bio, "·") >= 2:
		q.ContentPillarClarity = domain.PillarsSomewhatClear
	default:
		q.ContentPillarClarity = domain.PillarsUnclear
	}

	return q
}

// RuleSummary redacta un resumen de una o dos oraciones sin generador de texto.
func RuleSummary(handle string, q domain.QualificationData, score int) string {
	kind := "an account of undetermined type"
	switch q.IsBusiness {
	case domain.Yes:
		kind = "a business account"
	case domain.No:
		kind = "a personal account"
	}
	name := strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if name == "" {
		name = "This prospect"
	} else {
		name = "@" + name
	}
	first := fmt.Sprintf("%s is %s with %s profitability potential (lead score %d).", name, kind, q.ProfitabilityPotential, score)
	if q.ValueProposition == domain.ValuePropUnknown {
		return first
	}
	return first + fmt.Sprintf(" Biggest opportunity: %s.", q.ValueProposition)
}
