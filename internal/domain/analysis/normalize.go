package analysis

import (
	"encoding/json"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Normalize turns the raw AI response into a Record. It never fails: a
// strict parse of the (lightly repaired) JSON candidate is attempted first,
// and when that is impossible the known fields are recovered one by one
// from the raw text. Total failure yields a fully defaulted record.
func Normalize(raw string) Record {
	if rec, ok := parseStrict(raw); ok {
		return rec
	}
	return extractFields(raw)
}

var (
	fenceJSONRe    = regexp.MustCompile("(?m)```json\\s*")
	fenceRe        = regexp.MustCompile("(?m)```\\s*")
	trailingComma  = regexp.MustCompile(`,(\s*[}\]])`)
	missingComma   = regexp.MustCompile(`([}\]])\s*\n\s*(["\w])`)
	quotedLiterals = regexp.MustCompile(`"([^"]*)"`)
	ratingPattern  = regexp.MustCompile(`(?i)"rating"\s*:\s*"?(\d+)"?`)
)

// parseStrict is the all-or-nothing tier: strip code fences, take the
// outermost {...} span, repair trailing/missing commas, then decode. Any
// remaining syntax error discards the whole attempt.
func parseStrict(raw string) (Record, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = fenceJSONRe.ReplaceAllString(cleaned, "")
	cleaned = fenceRe.ReplaceAllString(cleaned, "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return Record{}, false
	}
	candidate := cleaned[start : end+1]

	candidate = trailingComma.ReplaceAllString(candidate, "$1")
	candidate = missingComma.ReplaceAllString(candidate, "$1,\n$2")

	// UseNumber keeps numeric values as their source text, so a numeric
	// rating or user count survives as-is instead of going through float64.
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	var parsed map[string]any
	if err := dec.Decode(&parsed); err != nil {
		return Record{}, false
	}
	// Anything left in the candidate after the object means it was not a
	// single well-formed value; the whole attempt is discarded.
	if _, err := dec.Token(); err != io.EOF {
		return Record{}, false
	}
	return fromParsed(parsed), true
}

// fromParsed maps a decoded object onto the fixed schema. Sections or
// fields absent from the object keep their defaults.
func fromParsed(m map[string]any) Record {
	rec := NewRecord()

	if sec := childMap(m, "company_overview"); sec != nil {
		rec.CompanyOverview.Name = scalarField(sec, "name")
		rec.CompanyOverview.FoundingYear = scalarField(sec, "founding_year")
		rec.CompanyOverview.Stage = scalarField(sec, "stage")
		rec.CompanyOverview.OneLiner = scalarField(sec, "one_liner")
	}

	rec.Founders = foundersFrom(m["founders"])

	if sec := childMap(m, "business_model"); sec != nil {
		rec.BusinessModel.ModelType = scalarField(sec, "model_type")
		rec.BusinessModel.RevenueStreams = stringsFrom(sec["revenue_streams"])
		rec.BusinessModel.TargetMarket = scalarField(sec, "target_market")
		rec.BusinessModel.PricingModel = scalarField(sec, "pricing_model")
	}

	if sec := childMap(m, "financials"); sec != nil {
		rec.Financials.ARR = scalarField(sec, "arr")
		rec.Financials.MRR = scalarField(sec, "mrr")
		rec.Financials.ExpectedRevenue = scalarField(sec, "expected_revenue")
		rec.Financials.GrossMargin = scalarField(sec, "gross_margin")
		rec.Financials.BurnRate = scalarField(sec, "burn_rate")
		rec.Financials.Runway = scalarField(sec, "runway")
		rec.Financials.LTVCACRatio = scalarField(sec, "ltv_cac_ratio")
		rec.Financials.RetentionRate = scalarField(sec, "retention_rate")
		rec.Financials.PaidUsers = scalarField(sec, "paid_users")
		rec.Financials.Valuation = scalarField(sec, "valuation")
		rec.Financials.ContractValues = scalarField(sec, "contract_values")
		rec.Financials.Pricing = scalarField(sec, "pricing")
	}

	if sec := childMap(m, "market_analysis"); sec != nil {
		rec.MarketAnalysis.MarketSize = scalarField(sec, "market_size")
		rec.MarketAnalysis.GrowthRate = scalarField(sec, "growth_rate")
		rec.MarketAnalysis.CompetitiveLandscape = scalarField(sec, "competitive_landscape")
		rec.MarketAnalysis.MarketOpportunity = scalarField(sec, "market_opportunity")
	}

	if sec := childMap(m, "traction"); sec != nil {
		rec.Traction.CustomerCount = scalarField(sec, "customer_count")
		rec.Traction.CustomerNames = stringsFrom(sec["customer_names"])
		rec.Traction.Partnerships = stringsFrom(sec["partnerships"])
		rec.Traction.PilotsRunning = stringsFrom(sec["pilots_running"])
		rec.Traction.RevenueMetrics = scalarField(sec, "revenue_metrics")
		rec.Traction.UserGrowth = scalarField(sec, "user_growth")
		rec.Traction.KeyAchievements = stringsFrom(sec["key_achievements"])
	}

	if sec := childMap(m, "funding"); sec != nil {
		rec.Funding.TotalRaised = scalarField(sec, "total_raised")
		rec.Funding.CurrentRound = scalarField(sec, "current_round")
		rec.Funding.FundingAsk = scalarField(sec, "funding_ask")
		rec.Funding.CurrentValuation = scalarField(sec, "current_valuation")
		rec.Funding.PreviousInvestors = stringsFrom(sec["previous_investors"])
		rec.Funding.UseOfFunds = stringsFrom(sec["use_of_funds"])
	}

	if sec := childMap(m, "team_and_operations"); sec != nil {
		rec.TeamAndOperations.TeamSize = scalarField(sec, "team_size")
		rec.TeamAndOperations.KeyHires = scalarField(sec, "key_hires")
		rec.TeamAndOperations.Locations = scalarField(sec, "locations")
		rec.TeamAndOperations.TechnologyStack = scalarField(sec, "technology_stack")
	}

	if sec := childMap(m, "competitive_analysis"); sec != nil {
		rec.CompetitiveAnalysis.Competitors = stringsFrom(sec["competitors"])
		rec.CompetitiveAnalysis.Differentiation = scalarField(sec, "differentiation")
		rec.CompetitiveAnalysis.CompetitiveAdvantages = stringsFrom(sec["competitive_advantages"])
	}

	rec.Strengths = stringsFrom(m["strengths"])
	rec.Risks = stringsFrom(m["risks"])

	if sec := childMap(m, "recommendation"); sec != nil {
		rec.Recommendation.Rating = scalarField(sec, "rating")
		rec.Recommendation.Rationale = scalarField(sec, "rationale")
	}

	return rec
}

func childMap(m map[string]any, key string) map[string]any {
	sec, _ := m[key].(map[string]any)
	return sec
}

func scalarField(sec map[string]any, key string) string {
	if s, ok := scalarText(sec[key]); ok {
		return s
	}
	return Sentinel
}

// scalarText stringifies a decoded scalar, keeping numbers as their source
// text. Nulls and nested values do not qualify.
func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func stringsFrom(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := scalarText(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func foundersFrom(v any) []Founder {
	out := []Founder{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Founder{
			Name:       scalarField(entry, "name"),
			Role:       scalarField(entry, "role"),
			Background: scalarField(entry, "background"),
		})
	}
	return out
}

// Tier 2: field-by-field recovery from text that did not survive the strict
// parse. Scalars match the first `"key": "value"` occurrence, lists collect
// the quoted literals inside the first `"key": [...` span. Founders are not
// reconstructed here; only flat string lists are.

var scalarPatterns = func() map[string]*regexp.Regexp {
	keys := []string{
		"name", "founding_year", "stage", "one_liner",
		"model_type", "target_market", "pricing_model",
		"arr", "mrr", "expected_revenue", "gross_margin", "burn_rate",
		"runway", "ltv_cac_ratio", "retention_rate", "paid_users",
		"valuation", "contract_values", "pricing",
		"market_size", "growth_rate", "competitive_landscape", "market_opportunity",
		"customer_count", "revenue_metrics", "user_growth",
		"total_raised", "current_round", "funding_ask", "current_valuation",
		"team_size", "key_hires", "locations", "technology_stack",
		"differentiation", "rationale",
	}
	out := make(map[string]*regexp.Regexp, len(keys))
	for _, k := range keys {
		out[k] = regexp.MustCompile(`(?is)"` + k + `"\s*:\s*"([^"]+)"`)
	}
	return out
}()

var arrayPatterns = func() map[string]*regexp.Regexp {
	keys := []string{
		"revenue_streams", "customer_names", "partnerships", "pilots_running",
		"key_achievements", "previous_investors", "use_of_funds",
		"competitors", "competitive_advantages", "strengths", "risks",
	}
	out := make(map[string]*regexp.Regexp, len(keys))
	for _, k := range keys {
		out[k] = regexp.MustCompile(`(?is)"` + k + `"\s*:\s*\[([^\]]*)`)
	}
	return out
}()

func extractFields(text string) Record {
	rec := NewRecord()

	rec.CompanyOverview = CompanyOverview{
		Name:         extractField(text, "name"),
		FoundingYear: extractField(text, "founding_year"),
		Stage:        extractField(text, "stage"),
		OneLiner:     extractField(text, "one_liner"),
	}
	rec.BusinessModel = BusinessModel{
		ModelType:      extractField(text, "model_type"),
		RevenueStreams: extractList(text, "revenue_streams"),
		TargetMarket:   extractField(text, "target_market"),
		PricingModel:   extractField(text, "pricing_model"),
	}
	rec.Financials = Financials{
		ARR:             extractField(text, "arr"),
		MRR:             extractField(text, "mrr"),
		ExpectedRevenue: extractField(text, "expected_revenue"),
		GrossMargin:     extractField(text, "gross_margin"),
		BurnRate:        extractField(text, "burn_rate"),
		Runway:          extractField(text, "runway"),
		LTVCACRatio:     extractField(text, "ltv_cac_ratio"),
		RetentionRate:   extractField(text, "retention_rate"),
		PaidUsers:       extractField(text, "paid_users"),
		Valuation:       extractField(text, "valuation"),
		ContractValues:  extractField(text, "contract_values"),
		Pricing:         extractField(text, "pricing"),
	}
	rec.MarketAnalysis = MarketAnalysis{
		MarketSize:           extractField(text, "market_size"),
		GrowthRate:           extractField(text, "growth_rate"),
		CompetitiveLandscape: extractField(text, "competitive_landscape"),
		MarketOpportunity:    extractField(text, "market_opportunity"),
	}
	rec.Traction = Traction{
		CustomerCount:   extractField(text, "customer_count"),
		CustomerNames:   extractList(text, "customer_names"),
		Partnerships:    extractList(text, "partnerships"),
		PilotsRunning:   extractList(text, "pilots_running"),
		RevenueMetrics:  extractField(text, "revenue_metrics"),
		UserGrowth:      extractField(text, "user_growth"),
		KeyAchievements: extractList(text, "key_achievements"),
	}
	rec.Funding = Funding{
		TotalRaised:       extractField(text, "total_raised"),
		CurrentRound:      extractField(text, "current_round"),
		FundingAsk:        extractField(text, "funding_ask"),
		CurrentValuation:  extractField(text, "current_valuation"),
		PreviousInvestors: extractList(text, "previous_investors"),
		UseOfFunds:        extractList(text, "use_of_funds"),
	}
	rec.TeamAndOperations = TeamAndOperations{
		TeamSize:        extractField(text, "team_size"),
		KeyHires:        extractField(text, "key_hires"),
		Locations:       extractField(text, "locations"),
		TechnologyStack: extractField(text, "technology_stack"),
	}
	rec.CompetitiveAnalysis = CompetitiveAnalysis{
		Competitors:           extractList(text, "competitors"),
		Differentiation:       extractField(text, "differentiation"),
		CompetitiveAdvantages: extractList(text, "competitive_advantages"),
	}
	rec.Strengths = extractList(text, "strengths")
	rec.Risks = extractList(text, "risks")
	rec.Recommendation = Recommendation{
		Rating:    extractRawRating(text),
		Rationale: extractField(text, "rationale"),
	}

	return rec
}

func extractField(text, key string) string {
	if m := scalarPatterns[key].FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return Sentinel
}

func extractList(text, key string) []string {
	out := []string{}
	m := arrayPatterns[key].FindStringSubmatch(text)
	if m == nil {
		return out
	}
	for _, q := range quotedLiterals.FindAllStringSubmatch(m[1], -1) {
		if strings.TrimSpace(q[1]) == "" {
			continue
		}
		out = append(out, q[1])
	}
	return out
}

// extractRawRating allows a bare numeric rating (`"rating": 4`) in addition
// to the quoted form.
func extractRawRating(text string) string {
	if m := ratingPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return Sentinel
}
