package services

import (
	"math"

	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
	"gorm.io/gorm"
)

// Report surcharges are flat add-ons, not scaled by page count
const (
	StandardReportPrice = 4.99
	TurnitinReportPrice = 9.99
)

// PriceQuote is the result of a price calculation
type PriceQuote struct {
	PricePerPage       float64          `json:"price_per_page"`
	PageCount          float64          `json:"page_count"`
	PagesPrice         float64          `json:"pages_price"`
	ReportPrice        float64          `json:"report_price"`
	TotalPrice         float64          `json:"total_price"`
	SelectedDeadline   *models.Deadline `json:"selected_deadline"`
	HoursUntilDeadline float64          `json:"hours_until_deadline"`
}

// PriceInput are the parameters for a price calculation
type PriceInput struct {
	ServiceID          uint
	AcademicLevelID    uint
	HoursUntilDeadline float64
	WordCount          int
	ReportType         string
}

// CalculatePrice resolves a price quote for the given input. It has no side
// effects and is used both for live quoting and for price-setting at order
// creation time; callers must re-resolve rather than trust client totals.
func CalculatePrice(db *gorm.DB, input PriceInput) (*PriceQuote, error) {
	if input.HoursUntilDeadline <= 0 {
		return nil, &ValidationError{Message: "Deadline cannot be less than or equal to zero hours from current time"}
	}

	reportPrice := 0.0
	switch input.ReportType {
	case "standard":
		reportPrice = StandardReportPrice
	case "turnitin":
		reportPrice = TurnitinReportPrice
	}

	deadline, err := SelectDeadline(db, input.HoursUntilDeadline)
	if err != nil {
		return nil, err
	}

	wordsPerPage := 275
	if cfg := config.GetConfig(); cfg != nil && cfg.WordsPerPage > 0 {
		wordsPerPage = cfg.WordsPerPage
	}
	pageCount := math.Max(1, round2(float64(input.WordCount)/float64(wordsPerPage)))

	var service models.Service
	if err := db.First(&service, input.ServiceID).Error; err != nil {
		return nil, &NotFoundError{Message: "Service not found"}
	}

	var rate models.PriceRate
	err = db.Where(
		"pricing_category_id = ? AND academic_level_id = ? AND deadline_id = ?",
		service.PricingCategoryID, input.AcademicLevelID, deadline.ID,
	).First(&rate).Error
	if err != nil {
		return nil, &NotFoundError{Message: "Price rate not found for the given combination of service, academic level, and deadline"}
	}

	pagesPrice := rate.PricePerPage * pageCount

	return &PriceQuote{
		PricePerPage:       rate.PricePerPage,
		PageCount:          pageCount,
		PagesPrice:         pagesPrice,
		ReportPrice:        reportPrice,
		TotalPrice:         pagesPrice + reportPrice,
		SelectedDeadline:   deadline,
		HoursUntilDeadline: round2(input.HoursUntilDeadline),
	}, nil
}

// SelectDeadline picks the urgency tier for a requested lead time. Tiers are
// scanned ascending by hours with a 1-hour grace on the boundary; if no tier
// is long enough, the longest available tier is used.
func SelectDeadline(db *gorm.DB, hoursUntilDeadline float64) (*models.Deadline, error) {
	var deadlines []models.Deadline
	if err := db.Order("hours asc").Find(&deadlines).Error; err != nil {
		return nil, err
	}
	if len(deadlines) == 0 {
		return nil, &ConfigurationError{Message: "No deadlines configured in system"}
	}

	for i := range deadlines {
		if hoursUntilDeadline <= deadlines[i].Hours+1 {
			return &deadlines[i], nil
		}
	}

	return &deadlines[len(deadlines)-1], nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
