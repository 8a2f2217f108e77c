package orderapp

import (
	"context"
	"strings"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// DefaultCustomsRiskThreshold is the declared value, in yen, above which an
// order is flagged for customs review
var DefaultCustomsRiskThreshold = decimal.NewFromInt(16500)

// ReferenceGroup is a set of unshipped orders sharing one reference number
type ReferenceGroup struct {
	ReferenceNo string        `json:"reference_no"`
	Count       int           `json:"count"`
	Orders      []order.Order `json:"orders"`
}

// ConsigneeGroup is a set of unshipped orders going to the same consignee
type ConsigneeGroup struct {
	ConsigneeName string        `json:"name"`
	Count         int           `json:"count"`
	Orders        []order.Order `json:"orders"`
}

// CustomsRisk flags an order whose quantity x sales price exceeds the threshold
type CustomsRisk struct {
	Order      order.Order     `json:"order"`
	SalesPrice decimal.Decimal `json:"sales_price"`
	Total      decimal.Decimal `json:"total"`
	Threshold  decimal.Decimal `json:"threshold"`
}

// Annotations are the risk flags attached to a single order
type Annotations struct {
	DuplicateReference bool `json:"duplicate_reference"`
	DuplicateConsignee bool `json:"duplicate_consignee"`
	CustomsRisk        bool `json:"customs_risk"`
}

// RiskReport is advisory output computed on every read
type RiskReport struct {
	DuplicateReferences []ReferenceGroup `json:"duplicate_references"`
	DuplicateConsignees []ConsigneeGroup `json:"duplicate_consignees"`
	CustomsRisks        []CustomsRisk    `json:"customs_risks"`
	Threshold           decimal.Decimal  `json:"threshold"`
	annotations         map[int64]Annotations
}

// AnnotationsFor returns the flags raised for one order
func (r *RiskReport) AnnotationsFor(id int64) Annotations {
	return r.annotations[id]
}

// HasWarnings reports whether any group or risk was found
func (r *RiskReport) HasWarnings() bool {
	return len(r.DuplicateReferences) > 0 || len(r.DuplicateConsignees) > 0 || len(r.CustomsRisks) > 0
}

// RiskAnalyzer computes duplicate groupings and customs exposure
type RiskAnalyzer struct {
	prices    ProductLookup
	threshold decimal.Decimal
}

// NewRiskAnalyzer creates a RiskAnalyzer. A non-positive threshold falls back
// to DefaultCustomsRiskThreshold.
func NewRiskAnalyzer(prices ProductLookup, threshold decimal.Decimal) *RiskAnalyzer {
	if !threshold.IsPositive() {
		threshold = DefaultCustomsRiskThreshold
	}
	return &RiskAnalyzer{prices: prices, threshold: threshold}
}

// Threshold returns the customs threshold in use
func (a *RiskAnalyzer) Threshold() decimal.Decimal {
	return a.threshold
}

// Analyze groups orders by reference and by consignee and flags customs risks.
// Groups are listed in order of first appearance.
func (a *RiskAnalyzer) Analyze(ctx context.Context, orders []order.Order) (*RiskReport, error) {
	report := &RiskReport{
		DuplicateReferences: []ReferenceGroup{},
		DuplicateConsignees: []ConsigneeGroup{},
		CustomsRisks:        []CustomsRisk{},
		Threshold:           a.threshold,
		annotations:         make(map[int64]Annotations),
	}

	byRef := groupBy(orders, func(o order.Order) string { return o.ReferenceNo })
	for _, g := range byRef {
		if len(g.members) < 2 {
			continue
		}
		report.DuplicateReferences = append(report.DuplicateReferences, ReferenceGroup{
			ReferenceNo: g.key,
			Count:       len(g.members),
			Orders:      g.members,
		})
		for _, o := range g.members {
			ann := report.annotations[o.ID]
			ann.DuplicateReference = true
			report.annotations[o.ID] = ann
		}
	}

	byName := groupBy(orders, func(o order.Order) string { return strings.TrimSpace(o.ConsigneeName) })
	for _, g := range byName {
		if g.key == "" || len(g.members) < 2 {
			continue
		}
		report.DuplicateConsignees = append(report.DuplicateConsignees, ConsigneeGroup{
			ConsigneeName: g.key,
			Count:         len(g.members),
			Orders:        g.members,
		})
		for _, o := range g.members {
			ann := report.annotations[o.ID]
			ann.DuplicateConsignee = true
			report.annotations[o.ID] = ann
		}
	}

	prices := make(map[string]decimal.Decimal)
	for _, o := range orders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		price, err := a.salesPrice(ctx, o, prices)
		if err != nil {
			return nil, err
		}
		total := price.Mul(decimal.NewFromInt(int64(o.Quantity)))
		if !total.GreaterThan(a.threshold) {
			continue
		}
		report.CustomsRisks = append(report.CustomsRisks, CustomsRisk{
			Order:      o,
			SalesPrice: price,
			Total:      total,
			Threshold:  a.threshold,
		})
		ann := report.annotations[o.ID]
		ann.CustomsRisk = true
		report.annotations[o.ID] = ann
	}

	return report, nil
}

// salesPrice prefers the listed sales price and falls back to the ingested unit value
func (a *RiskAnalyzer) salesPrice(ctx context.Context, o order.Order, cache map[string]decimal.Decimal) (decimal.Decimal, error) {
	if o.SKU == "" || a.prices == nil {
		return o.UnitValue, nil
	}
	if p, ok := cache[o.SKU]; ok {
		if p.IsZero() {
			return o.UnitValue, nil
		}
		return p, nil
	}
	info, found, err := a.prices.GetProductNameAndPrice(ctx, o.SKU)
	if err != nil {
		return decimal.Zero, err
	}
	price := decimal.Zero
	if found {
		price = info.Price
	}
	cache[o.SKU] = price
	if price.IsZero() {
		return o.UnitValue, nil
	}
	return price, nil
}

type orderGroup struct {
	key     string
	members []order.Order
}

func groupBy(orders []order.Order, key func(order.Order) string) []*orderGroup {
	index := make(map[string]*orderGroup)
	groups := make([]*orderGroup, 0)
	for _, o := range orders {
		k := key(o)
		g, ok := index[k]
		if !ok {
			g = &orderGroup{key: k}
			index[k] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, o)
	}
	return groups
}
