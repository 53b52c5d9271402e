package export

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"genquiz-service/internal/domain"
	"github.com/go-pdf/fpdf"
)

// unsafeName matches runs that must not appear in a download name.
var unsafeName = regexp.MustCompile(`[\s/\\"':]+`)

// demoRows fill the table of a session nobody has answered yet.
var demoRows = [][]string{
	{"Demo Guest", "80%", "10:00 AM"},
	{"Jane Doe", "65%", "10:02 AM"},
}

// FileName is the download name for a session's results.
func FileName(title string) string {
	return unsafeName.ReplaceAllString(title, "_") + "_results.pdf"
}

// Rows returns the participant, score and time cells of the results table.
func Rows(session domain.Session) [][]string {
	if len(session.Responses) == 0 {
		return demoRows
	}
	rows := make([][]string, 0, len(session.Responses))
	for _, r := range session.Responses {
		rows = append(rows, []string{r.ParticipantName, strconv.Itoa(r.Score), r.SubmittedAt.Format(time.Kitchen)})
	}
	return rows
}

// WriteResultsPDF renders a one page results summary of session to w.
func WriteResultsPDF(w io.Writer, session domain.Session, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetTitle("Results: "+session.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(14, 22, tr("Results: "+session.Title))

	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(14, 30, "Date: "+now.Format("Jan 2, 2006"))
	pdf.Text(14, 36, fmt.Sprintf("Total Questions: %d", len(session.Questions)))

	widths := []float64{90, 40, 52}
	pdf.SetXY(14, 45)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	for i, head := range []string{"Participant", "Score", "Time"} {
		pdf.CellFormat(widths[i], 8, head, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	for n, row := range Rows(session) {
		pdf.SetX(14)
		if n%2 == 1 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render results pdf: %w", err)
	}
	return nil
}
