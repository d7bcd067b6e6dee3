// Package tools wires the warehouse capabilities (document store, analytics,
// mailer) into the tool registry exposed to the model backend.
package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	analyticsx "github.com/hanumantraders/warehouse-agent/agent/analytics"
	contractx "github.com/hanumantraders/warehouse-agent/agent/contract"
	storex "github.com/hanumantraders/warehouse-agent/agent/store"
	toolx "github.com/hanumantraders/warehouse-agent/agent/tool"
)

// Mailer dispatches one order email and returns a confirmation string.
type Mailer interface {
	Send(ctx context.Context, recipient, body string) (string, error)
}

// Tool names as declared to the model.
const (
	ToolFetchSuppliers    = "fetch_suppliers_by_item"
	ToolInventoryStatus   = "get_inventory_status"
	ToolRecentSales       = "get_recent_sales"
	ToolRestockAnalysis   = "analyze_restock_needs"
	ToolProfitAnalysis    = "get_profit_analysis"
	ToolIdentifyDeadStock = "identify_dead_stock"
	ToolNavigateUI        = "navigate_ui"
	ToolSendOrderEmail    = "send_order_email"
)

const recentSalesLimit = 5

var validRoutes = map[string]bool{
	"/inventory": true,
	"/sales":     true,
	"/suppliers": true,
	"/customers": true,
	"/analytics": true,
	"/settings":  true,
}

type SupplierOption struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Category      string `json:"category"`
}

type InventoryRow struct {
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	TotalStock int     `json:"total_stock"`
	MinLevel   int     `json:"min_level"`
	Price      float64 `json:"price"`
}

type SaleSummary struct {
	Date       time.Time `json:"date"`
	Amount     float64   `json:"amount"`
	ItemsCount int       `json:"items_count"`
}

// Warehouse binds the business collaborators behind the tool surface.
type Warehouse struct {
	inventory storex.Inventory
	mailer    Mailer
	now       func() time.Time
}

func NewWarehouse(inventory storex.Inventory, mailer Mailer) (*Warehouse, error) {
	if inventory == nil {
		return nil, fmt.Errorf("%w: inventory store is required", contractx.ErrValidation)
	}
	if mailer == nil {
		return nil, fmt.Errorf("%w: mailer is required", contractx.ErrValidation)
	}
	return &Warehouse{
		inventory: inventory,
		mailer:    mailer,
		now:       time.Now,
	}, nil
}

// BuildRegistry registers the full warehouse tool set in a fixed order. The
// send-email tool is the only one with an external side effect and is the
// only confirmation-gated entry.
func (w *Warehouse) BuildRegistry() (*toolx.Registry, error) {
	registry := toolx.NewRegistry()
	for _, desc := range w.Descriptors() {
		if err := registry.Register(desc); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (w *Warehouse) Descriptors() []contractx.ToolDescriptor {
	return []contractx.ToolDescriptor{
		{
			Name:        ToolFetchSuppliers,
			Description: "Queries the database for suppliers providing a specific item or category. Use during procurement phase 1 (identification).",
			Params: objectParams(map[string]any{
				"item_name": stringParam("Item or category to source"),
			}, "item_name"),
			Handler: w.fetchSuppliers,
		},
		{
			Name:        ToolInventoryStatus,
			Description: "Checks stock levels. With product_name it searches for that product, otherwise returns the full inventory summary.",
			Params: objectParams(map[string]any{
				"product_name": stringParam("Optional product name filter"),
			}),
			Handler: w.inventoryStatus,
		},
		{
			Name:        ToolRecentSales,
			Description: "Returns the last 5 sales transactions.",
			Params:      objectParams(nil),
			Handler:     w.recentSales,
		},
		{
			Name:        ToolRestockAnalysis,
			Description: "Analyzes stock against sales velocity: days until stockout, restock threshold, and CRITICAL/WARNING status.",
			Params: objectParams(map[string]any{
				"product_name": stringParam("Optional product name filter"),
			}),
			Handler: w.restockAnalysis,
		},
		{
			Name:        ToolProfitAnalysis,
			Description: "Scans the catalog for margin vs. velocity opportunities and returns the top profit-potential items.",
			Params:      objectParams(nil),
			Handler:     w.profitAnalysis,
		},
		{
			Name:        ToolIdentifyDeadStock,
			Description: "Finds items with zero sales in the lookback window and the stock value locked in them.",
			Params:      objectParams(nil),
			Handler:     w.identifyDeadStock,
		},
		{
			Name:        ToolNavigateUI,
			Description: "Navigates the user's screen to a specific page. Valid paths: /inventory, /sales, /suppliers, /customers, /analytics, /settings.",
			Params: objectParams(map[string]any{
				"route_path": stringParam("Target route, e.g. /inventory"),
			}, "route_path"),
			Handler: w.navigate,
		},
		{
			Name:        ToolSendOrderEmail,
			Description: "Triggers the actual order email. Use this ONLY in procurement phase 4 (execution), after an explicit user confirmation.",
			Params: objectParams(map[string]any{
				"recipient_email": stringParam("Supplier email address"),
				"email_body":      stringParam("Full email body to send"),
			}, "recipient_email", "email_body"),
			RequiresConfirmation: true,
			Handler:              w.sendOrderEmail,
		},
	}
}

func (w *Warehouse) fetchSuppliers(ctx context.Context, args map[string]any) (any, error) {
	itemName, err := stringArg(args, "item_name", true)
	if err != nil {
		return nil, err
	}

	suppliers, err := w.inventory.SuppliersByCategory(ctx, itemName)
	if err != nil {
		return nil, fmt.Errorf("supplier lookup: %w", err)
	}

	options := make([]SupplierOption, 0, len(suppliers))
	for _, s := range suppliers {
		options = append(options, SupplierOption{
			ID:            s.ID,
			Name:          s.Name,
			ContactPerson: s.ContactPerson,
			Email:         s.Email,
			Category:      s.Category,
		})
	}
	return options, nil
}

func (w *Warehouse) inventoryStatus(ctx context.Context, args map[string]any) (any, error) {
	productName, err := stringArg(args, "product_name", false)
	if err != nil {
		return nil, err
	}

	products, err := w.inventory.ProductsByName(ctx, productName)
	if err != nil {
		return nil, fmt.Errorf("inventory lookup: %w", err)
	}

	rows := make([]InventoryRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, InventoryRow{
			Name:       p.Name,
			SKU:        p.SKU,
			TotalStock: p.TotalStock(),
			MinLevel:   p.MinStockLevel,
			Price:      p.Price,
		})
	}
	return rows, nil
}

func (w *Warehouse) recentSales(ctx context.Context, _ map[string]any) (any, error) {
	sales, err := w.inventory.RecentSales(ctx, recentSalesLimit)
	if err != nil {
		return nil, fmt.Errorf("recent sales: %w", err)
	}

	rows := make([]SaleSummary, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, SaleSummary{
			Date:       s.Date,
			Amount:     s.TotalAmount,
			ItemsCount: len(s.Items),
		})
	}
	return rows, nil
}

func (w *Warehouse) restockAnalysis(ctx context.Context, args map[string]any) (any, error) {
	productName, err := stringArg(args, "product_name", false)
	if err != nil {
		return nil, err
	}

	products, sales, err := w.loadCatalog(ctx, productName)
	if err != nil {
		return nil, err
	}
	return analyticsx.Restock(products, sales, w.now(), productName), nil
}

func (w *Warehouse) profitAnalysis(ctx context.Context, _ map[string]any) (any, error) {
	products, sales, err := w.loadCatalog(ctx, "")
	if err != nil {
		return nil, err
	}
	return analyticsx.Profit(products, sales, w.now()), nil
}

func (w *Warehouse) identifyDeadStock(ctx context.Context, _ map[string]any) (any, error) {
	products, sales, err := w.loadCatalog(ctx, "")
	if err != nil {
		return nil, err
	}
	return analyticsx.DeadStock(products, sales, w.now()), nil
}

func (w *Warehouse) navigate(ctx context.Context, args map[string]any) (any, error) {
	route, err := stringArg(args, "route_path", true)
	if err != nil {
		return nil, err
	}
	if !validRoutes[route] {
		return nil, fmt.Errorf("unknown route %q", route)
	}
	return contractx.NavigationSignal{Action: contractx.NavigationAction, Payload: route}, nil
}

func (w *Warehouse) sendOrderEmail(ctx context.Context, args map[string]any) (any, error) {
	recipient, err := stringArg(args, "recipient_email", true)
	if err != nil {
		return nil, err
	}
	body, err := stringArg(args, "email_body", true)
	if err != nil {
		return nil, err
	}
	return w.mailer.Send(ctx, recipient, body)
}

func (w *Warehouse) loadCatalog(ctx context.Context, productName string) ([]storex.Product, []storex.Sale, error) {
	products, err := w.inventory.ProductsByName(ctx, productName)
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}
	sales, err := w.inventory.AllSales(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load sales: %w", err)
	}
	return products, sales, nil
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("%s is required", key)
		}
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	value = strings.TrimSpace(value)
	if required && value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func stringParam(desc string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": desc,
	}
}

func objectParams(properties map[string]any, required ...string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	params := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return params
}
