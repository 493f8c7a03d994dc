package application

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
)

// LineKey derives the stable reconciliation key for an order line item.
// The explicit line-item id wins; a SKU can in principle recur across
// unrelated rows, so the SKU+name key is only the fallback.
func LineKey(item *domain.OrderLineItem) string {
	if item.ID != 0 {
		return fmt.Sprintf("item_%d", item.ID)
	}
	return skuKey(item.SKUID, item.SKUName)
}

func skuKey(skuID int64, skuName string) string {
	return fmt.Sprintf("sku_%d_%s", skuID, skuName)
}

// Reconcile merges an order's line items with every supplier quote submitted
// against the order, producing one ReconciledLineView per line item.
//
// It is a pure function of its inputs: the same line items and quotes yield
// identical output regardless of quote ordering, which matters because it
// runs on every render and poll. A quote line that matches no order line
// item gets a placeholder row keyed by SKU+name instead of being dropped.
func Reconcile(items []*domain.OrderLineItem, quotes []types.QuoteView) []types.ReconciledLineView {
	views := make(map[string]*types.ReconciledLineView, len(items))
	order := make([]string, 0, len(items))
	skuAlias := make(map[string]string, len(items))

	for _, item := range items {
		key := LineKey(item)
		if _, exists := views[key]; exists {
			continue
		}
		views[key] = &types.ReconciledLineView{
			Key:          key,
			OrderItemID:  item.ID,
			SKUID:        item.SKUID,
			SKUName:      item.SKUName,
			Brand:        item.Brand,
			Quantity:     item.Quantity,
			Status:       item.Status,
			SupplierName: item.SupplierName,
		}
		order = append(order, key)
		alias := skuKey(item.SKUID, item.SKUName)
		if _, taken := skuAlias[alias]; !taken {
			skuAlias[alias] = key
		}
	}

	seen := make(map[string]struct{})
	var placeholders []string
	for _, quote := range quotes {
		for _, line := range quote.Lines {
			target := resolveTarget(views, skuAlias, line)
			if target == "" {
				target = skuKey(line.SKUID, line.SKUName)
				if _, exists := views[target]; !exists {
					views[target] = &types.ReconciledLineView{
						Key:         target,
						OrderItemID: line.OrderItemID,
						SKUID:       line.SKUID,
						SKUName:     line.SKUName,
						Quantity:    line.Quantity,
						Placeholder: true,
					}
					placeholders = append(placeholders, target)
				}
			}
			view := views[target]

			// A resubmission under the same quote number must not create a
			// second visible entry.
			dedupKey := fmt.Sprintf("%s|%d|%d", target, quote.QuoteNo, line.SKUID)
			if _, dup := seen[dedupKey]; dup {
				continue
			}
			seen[dedupKey] = struct{}{}

			// The total is recomputed from the order's requested quantity so
			// a later quantity correction shows up without supplier resubmission.
			quantity := view.Quantity
			if quantity == 0 {
				quantity = line.Quantity
			}
			view.Quotes = append(view.Quotes, types.CompetingQuote{
				QuoteNo:          quote.QuoteNo,
				QuoteLineID:      line.LineID,
				SupplierName:     quote.SupplierName,
				UnitPrice:        line.UnitPrice,
				TotalPrice:       line.UnitPrice.Mul(decimal.NewFromInt(quantity)),
				ExpectedDelivery: line.ExpectedDelivery,
				Remark:           line.Remark,
			})
		}
	}

	sort.Strings(placeholders)
	order = append(order, placeholders...)

	result := make([]types.ReconciledLineView, 0, len(order))
	for _, key := range order {
		view := views[key]
		sort.Slice(view.Quotes, func(i, j int) bool {
			if view.Quotes[i].QuoteNo != view.Quotes[j].QuoteNo {
				return view.Quotes[i].QuoteNo < view.Quotes[j].QuoteNo
			}
			return view.Quotes[i].QuoteLineID < view.Quotes[j].QuoteLineID
		})
		result = append(result, *view)
	}
	return result
}

func resolveTarget(views map[string]*types.ReconciledLineView, skuAlias map[string]string, line types.QuoteLineView) string {
	if line.OrderItemID != 0 {
		key := fmt.Sprintf("item_%d", line.OrderItemID)
		if _, ok := views[key]; ok {
			return key
		}
	}
	if key, ok := skuAlias[skuKey(line.SKUID, line.SKUName)]; ok {
		return key
	}
	return ""
}
