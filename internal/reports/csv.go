package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// ExpenseRow is one line of the expenses CSV export.
type ExpenseRow struct {
	Date        time.Time
	Category    string
	Description string
	Amount      float64
}

// BuildMilkCSV renders the milk report rows plus a totals footer.
func BuildMilkCSV(data MilkReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "tag_no", "cattle_name", "morning_liters", "evening_liters", "total_liters", "income"}); err != nil {
		return nil, err
	}
	for _, r := range data.Rows {
		row := []string{
			r.Date.Format(dateLayout),
			r.TagNo,
			r.Name,
			fmt.Sprintf("%.2f", r.Morning),
			fmt.Sprintf("%.2f", r.Evening),
			fmt.Sprintf("%.2f", r.Total),
			fmt.Sprintf("%.2f", r.Income),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{"TOTAL", "", "", "", "", fmt.Sprintf("%.2f", data.TotalLiters), fmt.Sprintf("%.2f", data.TotalIncome)}); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildExpensesCSV renders the expense export with a totals footer.
func BuildExpensesCSV(rows []ExpenseRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "category", "description", "amount"}); err != nil {
		return nil, err
	}
	var total float64
	for _, r := range rows {
		total += r.Amount
		row := []string{
			r.Date.Format(dateLayout),
			r.Category,
			r.Description,
			fmt.Sprintf("%.2f", r.Amount),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{"TOTAL", "", "", fmt.Sprintf("%.2f", total)}); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
