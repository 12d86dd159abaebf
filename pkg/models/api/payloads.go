package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Envelope is the part every backend payload may carry.
type Envelope struct {
	Error  string `json:"error,omitempty"`
	Status string `json:"status,omitempty"`
}

func (e Envelope) Failed() bool { return e.Error != "" }

type Summary struct {
	Envelope
	TotalSales     *float64       `json:"total_sales"`
	TotalOrders    int64          `json:"total_orders"`
	TotalCustomers int64          `json:"total_customers"`
	TopProducts    []TopProduct   `json:"top_products"`
	Monthly        []MonthlySales `json:"monthly"`
}

// TopProduct accepts both lower and title-cased field names, the backend
// emits either depending on where the row came from.
type TopProduct struct {
	ProductID   *int64   `json:"product_id,omitempty"`
	Description string   `json:"description"`
	Sales       *float64 `json:"sales"`
}

func (p *TopProduct) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID        *int64   `json:"product_id"`
		Description      *string  `json:"description"`
		TitleDescription *string  `json:"Description"`
		Sales            *float64 `json:"sales"`
		TitleSales       *float64 `json:"Sales"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.ProductID = raw.ProductID
	p.Description = ""
	switch {
	case raw.Description != nil:
		p.Description = *raw.Description
	case raw.TitleDescription != nil:
		p.Description = *raw.TitleDescription
	}
	p.Sales = raw.Sales
	if p.Sales == nil {
		p.Sales = raw.TitleSales
	}
	return nil
}

type MonthlySales struct {
	InvoiceDate string   `json:"InvoiceDate"`
	Sales       *float64 `json:"Sales"`
}

type Forecast struct {
	Envelope
	Trend     string          `json:"trend"`
	Analysis  string          `json:"analysis"`
	PctChange *float64        `json:"pct_change,omitempty"`
	Points    []ForecastPoint `json:"forecast"`
}

// ForecastPoint is one predicted value. Y arrives as a number or a
// numeric string; anything else decodes as a gap.
type ForecastPoint struct {
	DS string   `json:"ds"`
	Y  *float64 `json:"y"`
}

func (p *ForecastPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		DS json.RawMessage `json:"ds"`
		Y  json.RawMessage `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.DS = flexString(raw.DS)
	p.Y = flexFloat(raw.Y)
	return nil
}

type ProductForecast struct {
	Envelope
	Products []ProductPrediction `json:"product_forecast"`
}

type ProductPrediction struct {
	Product   string          `json:"product"`
	ProductID *int64          `json:"product_id,omitempty"`
	NextMean  *float64        `json:"next_mean"`
	Forecast  []ForecastPoint `json:"forecast,omitempty"`
}

type Segments struct {
	Envelope
	Segments SegmentSet `json:"segments"`
}

type SegmentSet struct {
	Last30Sales *float64      `json:"last_30_sales,omitempty"`
	Prev30Sales *float64      `json:"prev_30_sales,omitempty"`
	Ratio       *float64      `json:"ratio,omitempty"`
	Chart       SegmentCounts `json:"chart,omitempty"`
}

type SegmentCount struct {
	Label string
	Count float64
}

// SegmentCounts decodes a JSON object into pairs, in document order.
type SegmentCounts []SegmentCount

func (s *SegmentCounts) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("segment chart: expected object, got %v", tok)
	}

	var out SegmentCounts
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("segment chart: expected key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("segment chart %q: %w", key, err)
		}

		count := 0.0
		if v := flexFloat(value); v != nil {
			count = *v
		}
		out = append(out, SegmentCount{Label: key, Count: count})
	}

	*s = out
	return nil
}

func (s SegmentCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(c.Count, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s SegmentCounts) Labels() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Label
	}
	return out
}

func (s SegmentCounts) Counts() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Count
	}
	return out
}

type UploadResult struct {
	Envelope
	Rows int64 `json:"rows"`
}

type MutationResult struct {
	Envelope
}

func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

func flexFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

type UploadKind string

const (
	UploadSales     UploadKind = "sales"
	UploadProducts  UploadKind = "products"
	UploadCustomers UploadKind = "customers"
)

var UploadKinds = []UploadKind{UploadSales, UploadProducts, UploadCustomers}

func ParseUploadKind(s string) (UploadKind, error) {
	for _, k := range UploadKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown upload kind %q", s)
}

// FormField is one multipart field, sent in order.
type FormField struct {
	Name  string
	Value string
}

type CustomerForm struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (f CustomerForm) Fields() []FormField {
	return []FormField{
		{Name: "name", Value: f.Name},
		{Name: "email", Value: f.Email},
		{Name: "phone", Value: f.Phone},
		{Name: "address", Value: f.Address},
	}
}

type ProductForm struct {
	Name  string
	Qty   string
	Price string
}

func (f ProductForm) Fields() []FormField {
	return []FormField{
		{Name: "pname", Value: f.Name},
		{Name: "qty", Value: f.Qty},
		{Name: "price", Value: f.Price},
	}
}
