package analysis

// Sentinel marks a scalar field that could not be located in the raw
// response. List fields never carry the sentinel; they default to an
// empty slice instead.
const Sentinel = "Not Available"

type CompanyOverview struct {
	Name         string `json:"name"`
	FoundingYear string `json:"founding_year"`
	Stage        string `json:"stage"`
	OneLiner     string `json:"one_liner"`
}

type Founder struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Background string `json:"background"`
}

type BusinessModel struct {
	ModelType      string   `json:"model_type"`
	RevenueStreams []string `json:"revenue_streams"`
	TargetMarket   string   `json:"target_market"`
	PricingModel   string   `json:"pricing_model"`
}

// Financials keeps every metric as the original text from the documents
// ("INR 5 Crores", "85%", "$400k in FY 25-26"); no unit conversion.
type Financials struct {
	ARR             string `json:"arr"`
	MRR             string `json:"mrr"`
	ExpectedRevenue string `json:"expected_revenue"`
	GrossMargin     string `json:"gross_margin"`
	BurnRate        string `json:"burn_rate"`
	Runway          string `json:"runway"`
	LTVCACRatio     string `json:"ltv_cac_ratio"`
	RetentionRate   string `json:"retention_rate"`
	PaidUsers       string `json:"paid_users"`
	Valuation       string `json:"valuation"`
	ContractValues  string `json:"contract_values"`
	Pricing         string `json:"pricing"`
}

type MarketAnalysis struct {
	MarketSize           string `json:"market_size"`
	GrowthRate           string `json:"growth_rate"`
	CompetitiveLandscape string `json:"competitive_landscape"`
	MarketOpportunity    string `json:"market_opportunity"`
}

type Traction struct {
	CustomerCount   string   `json:"customer_count"`
	CustomerNames   []string `json:"customer_names"`
	Partnerships    []string `json:"partnerships"`
	PilotsRunning   []string `json:"pilots_running"`
	RevenueMetrics  string   `json:"revenue_metrics"`
	UserGrowth      string   `json:"user_growth"`
	KeyAchievements []string `json:"key_achievements"`
}

type Funding struct {
	TotalRaised       string   `json:"total_raised"`
	CurrentRound      string   `json:"current_round"`
	FundingAsk        string   `json:"funding_ask"`
	CurrentValuation  string   `json:"current_valuation"`
	PreviousInvestors []string `json:"previous_investors"`
	UseOfFunds        []string `json:"use_of_funds"`
}

type TeamAndOperations struct {
	TeamSize        string `json:"team_size"`
	KeyHires        string `json:"key_hires"`
	Locations       string `json:"locations"`
	TechnologyStack string `json:"technology_stack"`
}

type CompetitiveAnalysis struct {
	Competitors           []string `json:"competitors"`
	Differentiation       string   `json:"differentiation"`
	CompetitiveAdvantages []string `json:"competitive_advantages"`
}

type Recommendation struct {
	Rating    string `json:"rating"`
	Rationale string `json:"rationale"`
}

// Record is the canonical structured result of one analysis. Every section
// is always present, so consumers never check for key existence.
type Record struct {
	CompanyOverview     CompanyOverview     `json:"company_overview"`
	Founders            []Founder           `json:"founders"`
	BusinessModel       BusinessModel       `json:"business_model"`
	Financials          Financials          `json:"financials"`
	MarketAnalysis      MarketAnalysis      `json:"market_analysis"`
	Traction            Traction            `json:"traction"`
	Funding             Funding             `json:"funding"`
	TeamAndOperations   TeamAndOperations   `json:"team_and_operations"`
	CompetitiveAnalysis CompetitiveAnalysis `json:"competitive_analysis"`
	Strengths           []string            `json:"strengths"`
	Risks               []string            `json:"risks"`
	Recommendation      Recommendation      `json:"recommendation"`
}

// NewRecord returns a fully defaulted record: every scalar field set to
// Sentinel, every list field an empty (non-nil) slice.
func NewRecord() Record {
	return Record{
		CompanyOverview: CompanyOverview{
			Name:         Sentinel,
			FoundingYear: Sentinel,
			Stage:        Sentinel,
			OneLiner:     Sentinel,
		},
		Founders: []Founder{},
		BusinessModel: BusinessModel{
			ModelType:      Sentinel,
			RevenueStreams: []string{},
			TargetMarket:   Sentinel,
			PricingModel:   Sentinel,
		},
		Financials: Financials{
			ARR:             Sentinel,
			MRR:             Sentinel,
			ExpectedRevenue: Sentinel,
			GrossMargin:     Sentinel,
			BurnRate:        Sentinel,
			Runway:          Sentinel,
			LTVCACRatio:     Sentinel,
			RetentionRate:   Sentinel,
			PaidUsers:       Sentinel,
			Valuation:       Sentinel,
			ContractValues:  Sentinel,
			Pricing:         Sentinel,
		},
		MarketAnalysis: MarketAnalysis{
			MarketSize:           Sentinel,
			GrowthRate:           Sentinel,
			CompetitiveLandscape: Sentinel,
			MarketOpportunity:    Sentinel,
		},
		Traction: Traction{
			CustomerCount:   Sentinel,
			CustomerNames:   []string{},
			Partnerships:    []string{},
			PilotsRunning:   []string{},
			RevenueMetrics:  Sentinel,
			UserGrowth:      Sentinel,
			KeyAchievements: []string{},
		},
		Funding: Funding{
			TotalRaised:       Sentinel,
			CurrentRound:      Sentinel,
			FundingAsk:        Sentinel,
			CurrentValuation:  Sentinel,
			PreviousInvestors: []string{},
			UseOfFunds:        []string{},
		},
		TeamAndOperations: TeamAndOperations{
			TeamSize:        Sentinel,
			KeyHires:        Sentinel,
			Locations:       Sentinel,
			TechnologyStack: Sentinel,
		},
		CompetitiveAnalysis: CompetitiveAnalysis{
			Competitors:           []string{},
			Differentiation:       Sentinel,
			CompetitiveAdvantages: []string{},
		},
		Strengths: []string{},
		Risks:     []string{},
		Recommendation: Recommendation{
			Rating:    Sentinel,
			Rationale: Sentinel,
		},
	}
}

// SignalScore returns the 1-5 investment rating parsed from the
// recommendation. The second return is false when the raw value does not
// contain a valid rating, which display logic treats differently from the
// sentinel.
func (r Record) SignalScore() (int, bool) {
	return ParseRating(r.Recommendation.Rating)
}
