package utils

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/manasaistanly/campus-approval-system/models"
	"github.com/manasaistanly/campus-approval-system/workflow"

	"github.com/jung-kurt/gofpdf"
)

// CertificateRenderer produces the bonafide certificate PDF. Rendering is
// a pure function of the request data; eligibility is decided by the
// workflow before this is ever called.
type CertificateRenderer struct {
	CollegeName    string
	CollegeAddress string
}

func NewCertificateRenderer() *CertificateRenderer {
	return &CertificateRenderer{
		CollegeName:    "COLLEGE NAME",
		CollegeAddress: "College Address, City, State - Zip",
	}
}

func (g *CertificateRenderer) Render(request *models.BonafideRequest) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, g.CollegeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, g.CollegeAddress, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetLineWidth(0.8)
	pdf.Line(18, pdf.GetY(), 192, pdf.GetY())
	pdf.Ln(12)

	// Title
	pdf.SetFont("Helvetica", "BU", 18)
	pdf.CellFormat(0, 10, "BONAFIDE CERTIFICATE", "", 1, "C", false, 0, "")
	pdf.Ln(12)

	studentName := strings.ToUpper(request.Student.FullName)
	registerNo := valueOr(request.Student.RegisterNumber, "N/A")
	department := valueOr(request.Student.Department, "N/A")
	year := valueOr(request.Student.Year, "N/A")

	pdf.SetFont("Helvetica", "", 14)
	body := fmt.Sprintf(
		"This is to certify that Mr./Ms. %s (Reg. No: %s) is a bonafide student of our college studying in %s year, Department of %s during the academic year %s.",
		studentName, registerNo, year, department, academicYear(time.Now()),
	)
	pdf.MultiCell(0, 8, body, "", "J", false)
	pdf.Ln(6)
	pdf.MultiCell(0, 8, fmt.Sprintf("This certificate is issued for the purpose of %s.", request.Purpose.Reason), "", "J", false)

	// Footer
	pdf.Ln(28)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(90, 8, "Date: "+time.Now().Format("02/01/2006"), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Principal", "", 1, "R", false, 0, "")
	if request.DeliveryMode == string(workflow.ModeDigital) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, "(Digitally Signed)", "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// academicYear formats the academic year containing t, rolling over in June.
func academicYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.June {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}
