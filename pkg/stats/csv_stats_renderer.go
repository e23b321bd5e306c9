package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/persely/persely/pkg/expense"
	log "github.com/sirupsen/logrus"
)

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

var csvHeader = []string{
	"Date",
	"Name",
	"Primary Category",
	"Category Match %",
	"Secondary Category",
	"Full Price",
	"Primary Split",
	"Secondary Split",
	"Is Recurring",
	"Cart Name",
}

func (t *CsvStatsRendererImpl) RenderStats(summary Summary) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write(csvHeader); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	for _, e := range summary.Expenses {
		if err := writer.Write(expenseRow(e)); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}

func expenseRow(e expense.Expense) []string {
	return []string{
		e.Date.Format(expense.DateFormat),
		e.Name,
		e.PrimaryCategory,
		strconv.Itoa(e.CategoryMatch),
		e.SecondaryCategory,
		e.FullPrice.StringFixed(2),
		e.PrimarySplit().StringFixed(2),
		e.SecondarySplit().StringFixed(2),
		yesNo(e.IsRecurring),
		e.CartName,
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
