package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/routine/internal/routine"
)

var csvHeader = []string{"Date", "Tasks", "Done", "Score (%)", "Feedback"}

// ToCSV writes one line per summary row.
func ToCSV(rows []routine.SummaryRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		row := []string{
			r.Day,
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Completed),
			strconv.Itoa(r.Percent),
			string(r.Feedback),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
