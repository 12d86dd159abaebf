package domain

import "time"

// Report is a printable view of one dashboard session
type Report struct {
	Title       string
	GeneratedAt time.Time
	Theme       string
	Horizon     int // forecast days
	Sections    []ReportSection
}

// ReportSection groups one area of the dashboard
type ReportSection struct {
	Title   string
	Summary map[string]string
	Details []ReportDetail
}

// ReportDetail is one row of a section
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
