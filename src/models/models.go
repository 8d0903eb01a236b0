package models

import "time"

// BondInvestment is one investment transaction row from the investment
// summary sheet. Multiple rows may share BondName+ISIN (tranches of the same
// series bought at different times); aggregation always sums across them.
type BondInvestment struct {
	BondName           string  `json:"bondName"`
	ISIN               string  `json:"isin"`
	Units              float64 `json:"units"`
	InvestedAmount     float64 `json:"investedAmount"`
	FaceValue          float64 `json:"faceValue"`
	AcquisitionCost    float64 `json:"acquisitionCost"`
	DateOfInvestment   string  `json:"dateOfInvestment"` // DD/MM/YYYY as uploaded
	MaturityDate       string  `json:"maturityDate"`     // DD/MM/YYYY as uploaded
	XIRR               float64 `json:"xirr"`             // percentage points, e.g. 10.5
	InterestFrequency  string  `json:"interestFrequency"`
	PrincipalFrequency string  `json:"principalFrequency"`

	// Derived at parse time.
	BondIssuer string `json:"bondIssuer"`
	Matured    bool   `json:"matured"`
	MonthYear  string `json:"monthYear"`
}

// SeriesKey is the bond-series identity used to join repayments to
// investments: BondName plus ISIN when the row carries one.
func (b BondInvestment) SeriesKey() string {
	if b.ISIN == "" {
		return b.BondName
	}
	return b.BondName + "|" + b.ISIN
}

// RepaymentEntry is one repayment/interest event from the repayment summary
// sheet. A flat fact: no derived fields.
type RepaymentEntry struct {
	Date                  string  `json:"date"` // DD/MM/YYYY, validated at parse
	BondName              string  `json:"bondName"`
	ISIN                  string  `json:"isin"`
	Units                 float64 `json:"units"`
	AmountInBank          float64 `json:"amountInBank"`
	PrincipalRepaid       float64 `json:"principalRepaid"`
	InterestPaidBeforeTDS float64 `json:"interestPaidBeforeTds"`
	InterestPaidAfterTDS  float64 `json:"interestPaidAfterTds"`
	TDSDeducted           float64 `json:"tdsDeducted"`
}

// PivotTable maps issuer -> bond series -> time-bucket label -> summed amount.
// Rebuilt on every view change, never mutated in place.
type PivotTable map[string]map[string]map[string]float64

// PivotResult is the pivot plus the totals the dashboard tables need.
type PivotResult struct {
	Pivot        PivotTable         `json:"pivot"`
	IssuerTotals map[string]float64 `json:"issuerTotals"`
	GrandTotal   float64            `json:"grandTotal"`
	BucketOrder  []string           `json:"bucketOrder"` // chronological bucket labels
}

// BondRollup is the per-series reconciliation of investments against
// repayments.
type BondRollup struct {
	BondName              string  `json:"bondName"`
	ISIN                  string  `json:"isin"`
	BondIssuer            string  `json:"bondIssuer"`
	Units                 float64 `json:"units"`
	InvestedAmount        float64 `json:"investedAmount"`
	RemainingPrincipal    float64 `json:"remainingPrincipal"`
	PrincipalRepaid       float64 `json:"principalRepaid"`
	InterestPaidBeforeTDS float64 `json:"interestPaidBeforeTds"`
	InterestPaidAfterTDS  float64 `json:"interestPaidAfterTds"`
	TDSDeducted           float64 `json:"tdsDeducted"`
	XIRR                  float64 `json:"xirr"`
	InterestFrequency     string  `json:"interestFrequency"`
	Matured               bool    `json:"matured"`
	// TotalValue is deliberately the invested amount: there is no pricing model.
	TotalValue float64 `json:"totalValue"`
}

// IssuerRollup aggregates BondRollups for one issuer.
type IssuerRollup struct {
	BondIssuer            string  `json:"bondIssuer"`
	InvestedAmount        float64 `json:"investedAmount"`
	RemainingPrincipal    float64 `json:"remainingPrincipal"`
	PrincipalRepaid       float64 `json:"principalRepaid"`
	InterestPaidAfterTDS  float64 `json:"interestPaidAfterTds"`
	InterestPaidBeforeTDS float64 `json:"interestPaidBeforeTds"`
	BondCount             int     `json:"bondCount"`
}

// ScheduleEntry is one realized repayment row for a bond series, with the
// running principal balance after that payment.
type ScheduleEntry struct {
	Date             string  `json:"date"`
	PrincipalPayment float64 `json:"principalPayment"`
	InterestPayment  float64 `json:"interestPayment"`
	TotalPayment     float64 `json:"totalPayment"`
	PrincipalBalance float64 `json:"principalBalance"`
	Status           string  `json:"status"` // always "Paid": only realized rows
}

// MissedInterest lists the expected interest months with no payout for one
// monthly-interest bond series.
type MissedInterest struct {
	BondName     string   `json:"bondName"`
	ISIN         string   `json:"isin"`
	BondIssuer   string   `json:"bondIssuer"`
	MissedMonths []string `json:"missedMonths"` // e.g. "November 2023"
}

// PortfolioSummary is the headline card data.
type PortfolioSummary struct {
	InvestmentCount    int       `json:"investmentCount"`
	RepaymentCount     int       `json:"repaymentCount"`
	ActiveBondCount    int       `json:"activeBondCount"`
	MaturedBondCount   int       `json:"maturedBondCount"`
	TotalInvested      float64   `json:"totalInvested"`
	ActiveInvested     float64   `json:"activeInvested"`
	RemainingPrincipal float64   `json:"remainingPrincipal"`
	InterestEarned     float64   `json:"interestEarned"` // after TDS
	AverageXIRR        float64   `json:"averageXirr"`
	UploadedAt         time.Time `json:"uploadedAt"`
}
