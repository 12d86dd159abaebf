package dashboard

import (
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/view"
)

// Element ids of the dashboard page.
const (
	TotalSales         = "total-sales"
	TotalOrders        = "total-orders"
	TotalCustomers     = "total-customers"
	TopProducts        = "top-products"
	MonthlyChart       = "monthly-chart"
	SalesChart         = "sales-chart"
	ForecastTrend      = "forecast-trend"
	ForecastAnalysis   = "forecast-analysis"
	ProductPredictions = "product-predictions"
	AIAnalysis         = "ai-analysis"
	SegmentsChart      = "segments-chart"

	CustomerForm    = "customer-form"
	CustomerName    = "customer-name"
	CustomerEmail   = "customer-email"
	CustomerPhone   = "customer-phone"
	CustomerAddress = "customer-address"
	FormSuccess     = "form-success"

	ProductForm    = "product-form"
	ProductName    = "product-pname"
	ProductQty     = "product-qty"
	ProductPrice   = "product-price"
	ProductSuccess = "product-success"

	ReloadSummary = "reload-summary"
	ThemeSelector = "theme-selector"
)

// ChartSlots lists the canvases charts are drawn into.
var ChartSlots = []string{MonthlyChart, SalesChart, SegmentsChart}

func FileInput(kind api.UploadKind) string { return string(kind) + "-file" }

func UploadMessage(kind api.UploadKind) string { return string(kind) + "-msg" }

var (
	customerFields = []string{CustomerName, CustomerEmail, CustomerPhone, CustomerAddress}
	productFields  = []string{ProductName, ProductQty, ProductPrice}
)

// NewPage builds the page with every element the dashboard touches.
func NewPage() *view.Page {
	ids := []string{
		TotalSales, TotalOrders, TotalCustomers, TopProducts,
		MonthlyChart, SalesChart, ForecastTrend, ForecastAnalysis,
		ProductPredictions, AIAnalysis, SegmentsChart,
		CustomerForm, FormSuccess, ProductForm, ProductSuccess,
		ReloadSummary, ThemeSelector,
	}
	ids = append(ids, customerFields...)
	ids = append(ids, productFields...)
	for _, kind := range api.UploadKinds {
		ids = append(ids, FileInput(kind), UploadMessage(kind))
	}
	return view.NewPage(ids...)
}
