// Package reports renders downloadable farm reports as PDF and CSV.
package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const dateLayout = "2006-01-02"

// MilkRow is one line of a milk production table.
type MilkRow struct {
	Date     time.Time
	TagNo    string
	Name     string
	Morning  float64
	Evening  float64
	Total    float64
	Income   float64
}

// FeedRow is one line of a feed usage table.
type FeedRow struct {
	Date     time.Time
	FeedName string
	Quantity float64
}

// HealthRow is one line of a health history table.
type HealthRow struct {
	Date        time.Time
	Issue       string
	Treatment   string
	VetName     string
	NextCheckup *time.Time
}

// CattleReportData feeds the per-animal PDF report.
type CattleReportData struct {
	FarmName     string
	TagNo        string
	Name         string
	Breed        string
	Age          int
	Gender       string
	HealthStatus string
	Start        time.Time
	End          time.Time

	TotalMilk   float64
	AverageMilk float64
	PeakMilk    float64
	TotalIncome float64

	MilkRows   []MilkRow
	FeedRows   []FeedRow
	HealthRows []HealthRow
}

// MilkReportData feeds the farm-wide milk PDF/CSV report.
type MilkReportData struct {
	FarmName    string
	Start       time.Time
	End         time.Time
	Rows        []MilkRow
	TotalLiters float64
	TotalIncome float64
}

func newReportPDF(title, subtitle string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(22, 101, 52)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)
	return pdf
}

func sectionHeader(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 253, 244)
	pdf.CellFormat(0, 8, text, "", 1, "L", true, 0, "")
	pdf.Ln(1)
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(229, 231, 235)
	for i, label := range labels {
		pdf.CellFormat(widths[i], 7, label, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
}

func infoLine(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

// BuildCattlePDF renders the per-animal report: identity, production
// stats for the period, then milk, feed and health tables.
func BuildCattlePDF(data CattleReportData) ([]byte, error) {
	period := fmt.Sprintf("%s to %s", data.Start.Format(dateLayout), data.End.Format(dateLayout))
	pdf := newReportPDF("Cattle Report", fmt.Sprintf("%s  |  %s", data.FarmName, period))

	sectionHeader(pdf, "Animal Information")
	infoLine(pdf, "Tag No", data.TagNo)
	infoLine(pdf, "Name", data.Name)
	infoLine(pdf, "Breed", data.Breed)
	infoLine(pdf, "Age", fmt.Sprintf("%d years", data.Age))
	infoLine(pdf, "Gender", data.Gender)
	infoLine(pdf, "Health Status", data.HealthStatus)
	pdf.Ln(3)

	sectionHeader(pdf, "Production Summary")
	infoLine(pdf, "Total Milk", fmt.Sprintf("%.2f L", data.TotalMilk))
	infoLine(pdf, "Daily Average", fmt.Sprintf("%.2f L", data.AverageMilk))
	infoLine(pdf, "Peak Day", fmt.Sprintf("%.2f L", data.PeakMilk))
	infoLine(pdf, "Total Income", fmt.Sprintf("%.2f", data.TotalIncome))
	pdf.Ln(3)

	sectionHeader(pdf, "Milk Records")
	if len(data.MilkRows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, "No milk records in this period.", "", 1, "L", false, 0, "")
	} else {
		widths := []float64{35, 35, 35, 35, 35}
		tableHeader(pdf, widths, []string{"Date", "Morning (L)", "Evening (L)", "Total (L)", "Income"})
		for _, r := range data.MilkRows {
			pdf.CellFormat(widths[0], 6, r.Date.Format(dateLayout), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], 6, fmt.Sprintf("%.2f", r.Morning), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", r.Evening), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", r.Total), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", r.Income), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}
	pdf.Ln(3)

	sectionHeader(pdf, "Feed Usage")
	if len(data.FeedRows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, "No feed usage in this period.", "", 1, "L", false, 0, "")
	} else {
		widths := []float64{50, 80, 45}
		tableHeader(pdf, widths, []string{"Date", "Feed", "Quantity (kg)"})
		for _, r := range data.FeedRows {
			pdf.CellFormat(widths[0], 6, r.Date.Format(dateLayout), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], 6, r.FeedName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", r.Quantity), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}
	pdf.Ln(3)

	sectionHeader(pdf, "Health History")
	if len(data.HealthRows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, "No health records in this period.", "", 1, "L", false, 0, "")
	} else {
		widths := []float64{28, 45, 45, 32, 25}
		tableHeader(pdf, widths, []string{"Date", "Issue", "Treatment", "Vet", "Next Checkup"})
		for _, r := range data.HealthRows {
			next := "-"
			if r.NextCheckup != nil {
				next = r.NextCheckup.Format(dateLayout)
			}
			pdf.CellFormat(widths[0], 6, r.Date.Format(dateLayout), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], 6, r.Issue, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 6, r.Treatment, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 6, r.VetName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[4], 6, next, "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildMilkPDF renders the farm-wide milk production report.
func BuildMilkPDF(data MilkReportData) ([]byte, error) {
	period := fmt.Sprintf("%s to %s", data.Start.Format(dateLayout), data.End.Format(dateLayout))
	pdf := newReportPDF("Milk Production Report", fmt.Sprintf("%s  |  %s", data.FarmName, period))

	sectionHeader(pdf, "Summary")
	infoLine(pdf, "Total Milk", fmt.Sprintf("%.2f L", data.TotalLiters))
	infoLine(pdf, "Total Income", fmt.Sprintf("%.2f", data.TotalIncome))
	infoLine(pdf, "Records", fmt.Sprintf("%d", len(data.Rows)))
	pdf.Ln(3)

	sectionHeader(pdf, "Records")
	if len(data.Rows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, "No milk records in this period.", "", 1, "L", false, 0, "")
	} else {
		widths := []float64{26, 22, 35, 23, 23, 23, 23}
		tableHeader(pdf, widths, []string{"Date", "Tag", "Cattle", "Morning", "Evening", "Total", "Income"})
		for _, r := range data.Rows {
			pdf.CellFormat(widths[0], 6, r.Date.Format(dateLayout), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], 6, r.TagNo, "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[2], 6, r.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", r.Morning), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", r.Evening), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.2f", r.Total), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[6], 6, fmt.Sprintf("%.2f", r.Income), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
