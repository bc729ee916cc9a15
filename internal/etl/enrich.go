package etl

import (
	"fmt"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
)

// Column names of the enriched orders table.
const (
	JoinKey                 = "customer_id"
	PurchaseTimestampColumn = "order_purchase_timestamp"

	PurchaseMonthColumn   = "mes_compra"
	PurchaseWeekdayColumn = "dia_semana_compra"
	PurchaseHourColumn    = "hora_compra"
)

// DefaultTable is the destination table for the enriched orders.
const DefaultTable = "pedidos_enriquecidos"

// EnrichmentChain parses the purchase timestamp and derives the calendar
// features from it.
func EnrichmentChain() []Transformer {
	return []Transformer{
		ParseTimestampColumn(PurchaseTimestampColumn),
		DeriveColumn(PurchaseTimestampColumn, Field{Name: PurchaseMonthColumn, Type: TypeInteger}, Month),
		DeriveColumn(PurchaseTimestampColumn, Field{Name: PurchaseWeekdayColumn, Type: TypeText}, WeekdayName),
		DeriveColumn(PurchaseTimestampColumn, Field{Name: PurchaseHourColumn, Type: TypeInteger}, Hour),
	}
}

// EnrichOrders joins customers with orders and applies EnrichmentChain.
// Customers without orders and orders without a known customer are dropped.
func EnrichOrders(ds Datasets) (*Table, error) {
	customers, err := ds.Get(domain.Customers)
	if err != nil {
		return nil, err
	}
	orders, err := ds.Get(domain.Orders)
	if err != nil {
		return nil, err
	}

	joined, err := InnerJoin(customers, orders, JoinKey)
	if err != nil {
		return nil, fmt.Errorf("join %s with %s: %w", domain.Customers, domain.Orders, err)
	}
	enriched, err := ApplyTransformers(joined, EnrichmentChain())
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	return enriched, nil
}
