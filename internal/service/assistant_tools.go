package service

import (
	"context"
	"encoding/json"
	"time"

	"go-pos-backend/internal/ai"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
)

type createProductParams struct {
	SKU          string `json:"sku" jsonschema_description:"Unique product SKU, uppercase letters/digits/hyphens (e.g. PROD-001)"`
	Name         string `json:"name" jsonschema_description:"Product name"`
	Category     string `json:"category" jsonschema_description:"Product category"`
	Unit         string `json:"unit" jsonschema:"enum=pcs,enum=kg,enum=liter,enum=meter,enum=box" jsonschema_description:"Unit of measurement"`
	Description  string `json:"description,omitempty" jsonschema_description:"Product description"`
	UnitPrice    int64  `json:"unit_price,omitempty" jsonschema_description:"Unit price in cents"`
	MinStock     int    `json:"min_stock,omitempty" jsonschema_description:"Minimum stock level"`
	ReorderPoint int    `json:"reorder_point,omitempty" jsonschema_description:"Reorder point"`
}

type updateProductParams struct {
	SKU          string  `json:"sku" jsonschema_description:"SKU of the product to update"`
	Name         *string `json:"name,omitempty"`
	Category     *string `json:"category,omitempty"`
	Unit         *string `json:"unit,omitempty" jsonschema:"enum=pcs,enum=kg,enum=liter,enum=meter,enum=box"`
	Description  *string `json:"description,omitempty"`
	UnitPrice    *int64  `json:"unit_price,omitempty" jsonschema_description:"New unit price in cents"`
	MinStock     *int    `json:"min_stock,omitempty"`
	ReorderPoint *int    `json:"reorder_point,omitempty"`
}

type skuParams struct {
	SKU string `json:"sku" jsonschema_description:"Product SKU"`
}

type listProductsParams struct {
	Category string `json:"category,omitempty" jsonschema_description:"Filter by category"`
}

type adjustStockParams struct {
	SKU             string `json:"sku" jsonschema_description:"Product SKU"`
	Type            string `json:"type" jsonschema:"enum=purchase,enum=adjustment,enum=return" jsonschema_description:"Kind of stock movement"`
	Quantity        int    `json:"quantity" jsonschema_description:"Signed quantity; negative reduces stock"`
	Reason          string `json:"reason" jsonschema_description:"Audit note for the movement"`
	ReferenceNumber string `json:"reference_number,omitempty"`
}

type processSaleParams struct {
	Items         []SaleLineInput `json:"items" jsonschema_description:"Cart lines (SKU and quantity)"`
	PaymentMethod string          `json:"payment_method" jsonschema:"enum=cash,enum=card,enum=transfer,enum=mixed"`
	CustomerID    string          `json:"customer_id,omitempty" jsonschema_description:"Customer UUID for credit sales"`
	Notes         string          `json:"notes,omitempty"`
}

type cancelSaleParams struct {
	SaleNumber string `json:"sale_number" jsonschema_description:"Sale number, e.g. V20250115-0001"`
}

type salesReportParams struct {
	StartDate string `json:"start_date,omitempty" jsonschema_description:"Start date YYYY-MM-DD; defaults to today"`
	EndDate   string `json:"end_date,omitempty" jsonschema_description:"End date YYYY-MM-DD; defaults to today"`
}

// buildRegistry exposes catalog, stock and sale operations to the agent.
// Every handler closes over the acting user so audit fields are attributed
// to whoever is chatting, not to a system account.
func (s *assistantService) buildRegistry(userID uuid.UUID) *ai.ToolRegistry {
	registry := ai.NewToolRegistry()

	registry.Register(ai.ToolDefinition{
		Name:        "create_product",
		Description: "Create a new product in the inventory catalog.",
		InputSchema: ai.InputSchema(createProductParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p createProductParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			product := &model.Product{
				SKU:          p.SKU,
				Name:         p.Name,
				Category:     p.Category,
				Unit:         model.ProductUnit(p.Unit),
				Description:  p.Description,
				UnitPrice:    p.UnitPrice,
				MinStock:     p.MinStock,
				ReorderPoint: p.ReorderPoint,
			}
			if product.ReorderPoint == 0 {
				product.ReorderPoint = 10
			}
			if err := s.catalog.CreateProduct(product, userID.String()); err != nil {
				return nil, err
			}
			return product, nil
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "update_product",
		Description: "Update an existing product; only the provided fields change. The SKU identifies the product.",
		InputSchema: ai.InputSchema(updateProductParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p updateProductParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			product, err := s.catalog.GetProductBySKU(p.SKU)
			if err != nil {
				return nil, err
			}
			input := UpdateProductInput{
				Name:         p.Name,
				Category:     p.Category,
				Description:  p.Description,
				UnitPrice:    p.UnitPrice,
				MinStock:     p.MinStock,
				ReorderPoint: p.ReorderPoint,
			}
			if p.Unit != nil {
				unit := model.ProductUnit(*p.Unit)
				input.Unit = &unit
			}
			return s.catalog.UpdateProduct(product.ID, input, userID.String())
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "delete_product",
		Description: "Delete a product from the catalog. Fails if the product has sale or stock history.",
		InputSchema: ai.InputSchema(skuParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p skuParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			product, err := s.catalog.GetProductBySKU(p.SKU)
			if err != nil {
				return nil, err
			}
			if err := s.catalog.DeleteProduct(product.ID); err != nil {
				return nil, err
			}
			return map[string]interface{}{"deleted": true, "sku": product.SKU, "name": product.Name}, nil
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "get_product",
		Description: "Get a product by SKU, including its current stock.",
		InputSchema: ai.InputSchema(skuParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p skuParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			product, err := s.catalog.GetProductBySKU(p.SKU)
			if err != nil {
				return nil, err
			}
			stock, err := s.stock.GetCurrentStock(product.ID)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"product": product, "current_stock": stock}, nil
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "list_products",
		Description: "List products, optionally filtered by category.",
		InputSchema: ai.InputSchema(listProductsParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p listProductsParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			products, err := s.catalog.GetProducts(repository.ProductFilters{Category: p.Category})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"total": len(products), "products": products}, nil
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "get_stock",
		Description: "Get the current stock level for a product by SKU.",
		InputSchema: ai.InputSchema(skuParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p skuParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			product, err := s.catalog.GetProductBySKU(p.SKU)
			if err != nil {
				return nil, err
			}
			stock, err := s.stock.GetCurrentStock(product.ID)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"sku":           product.SKU,
				"name":          product.Name,
				"current_stock": stock,
				"reorder_point": product.ReorderPoint,
			}, nil
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "get_low_stock",
		Description: "List products whose live stock is at or below their reorder point.",
		InputSchema: ai.InputSchema(struct{}{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			return s.catalog.FindLowStock()
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "adjust_stock",
		Description: "Post a manual stock movement (purchase, adjustment or return) for a product.",
		InputSchema: ai.InputSchema(adjustStockParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p adjustStockParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			product, err := s.catalog.GetProductBySKU(p.SKU)
			if err != nil {
				return nil, err
			}
			return s.stock.AdjustStock(ctx, AdjustStockInput{
				ProductID:       product.ID,
				Type:            model.TransactionType(p.Type),
				Quantity:        p.Quantity,
				Reason:          p.Reason,
				UserID:          userID,
				ReferenceNumber: p.ReferenceNumber,
			})
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "process_sale",
		Description: "Process a sale: validates stock, creates the sale with its items and deducts inventory.",
		InputSchema: ai.InputSchema(processSaleParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p processSaleParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			input := ProcessSaleInput{
				Items:         p.Items,
				PaymentMethod: model.PaymentMethod(p.PaymentMethod),
				UserID:        userID,
				Notes:         p.Notes,
			}
			if p.CustomerID != "" {
				customerID, err := uuid.Parse(p.CustomerID)
				if err != nil {
					return nil, err
				}
				input.CustomerID = &customerID
			}
			return s.sales.ProcessSale(ctx, input)
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "cancel_sale",
		Description: "Cancel a completed sale by sale number, restoring the stock it deducted.",
		InputSchema: ai.InputSchema(cancelSaleParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p cancelSaleParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			sale, err := s.sales.GetSaleByNumber(p.SaleNumber)
			if err != nil {
				return nil, err
			}
			if err := s.sales.CancelSale(ctx, sale.ID, userID); err != nil {
				return nil, err
			}
			return map[string]interface{}{"cancelled": true, "sale_number": sale.SaleNumber}, nil
		},
	})

	registry.Register(ai.ToolDefinition{
		Name:        "sales_report",
		Description: "Sales totals for a date range: amount, count, average ticket and per-payment-method breakdown.",
		InputSchema: ai.InputSchema(salesReportParams{}),
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var p salesReportParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			if p.StartDate == "" && p.EndDate == "" {
				return s.sales.GetTodayStats()
			}
			start, err := time.Parse("2006-01-02", p.StartDate)
			if err != nil {
				return nil, err
			}
			end := start.AddDate(0, 0, 1)
			if p.EndDate != "" {
				end, err = time.Parse("2006-01-02", p.EndDate)
				if err != nil {
					return nil, err
				}
				end = end.AddDate(0, 0, 1)
			}
			return s.sales.GetDateRangeStats(start, end)
		},
	})

	return registry
}
