package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/routine/internal/routine"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	DayCount   int           `json:"day_count"`
	Days       []jsonDay     `json:"days"`
	Summary    []jsonSummary `json:"summary"`
}

type jsonDay struct {
	Date      string     `json:"date"`
	Evaluated bool       `json:"evaluated"`
	Tasks     []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID          string `json:"id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type jsonSummary struct {
	Date     string `json:"date"`
	Tasks    int    `json:"tasks"`
	Done     int    `json:"done"`
	Percent  int    `json:"score_percent"`
	Feedback string `json:"feedback"`
}

// ToJSON writes every day with its tasks plus the summary rows.
func ToJSON(days []routine.DaySnapshot, rows []routine.SummaryRow, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		DayCount:   len(days),
	}

	for _, d := range days {
		jd := jsonDay{Date: d.Day, Evaluated: d.Evaluated, Tasks: []jsonTask{}}
		for _, t := range d.Tasks {
			jd.Tasks = append(jd.Tasks, jsonTask{
				ID:          t.ID,
				Start:       t.Start,
				End:         t.End,
				Description: t.Description,
				Status:      string(t.Status),
			})
		}
		export.Days = append(export.Days, jd)
	}

	for _, r := range rows {
		export.Summary = append(export.Summary, jsonSummary{
			Date:     r.Day,
			Tasks:    r.Total,
			Done:     r.Completed,
			Percent:  r.Percent,
			Feedback: string(r.Feedback),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
