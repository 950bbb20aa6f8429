// Package export writes the students report workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"gocampus/internal/student"
)

var headers = []string{
	"Student ID", "Name", "Bus No", "Fee Paid", "Parent Contact", "Semester",
	"Branch", "Amount Paid", "Transaction Date", "Email", "Registration Date",
	"Valid Till", "QR URL",
}

// StudentsWorkbook renders all students into a single-sheet xlsx.
func StudentsWorkbook(students []student.Student) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Students"
	f.SetSheetName("Sheet1", sheet)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, s := range students {
		values := []any{
			s.StudentID, s.Name, s.BusID, paidLabel(s.FeePaid),
			strDeref(s.ParentContact), strDeref(s.Semester), strDeref(s.Branch),
			intDeref(s.AmountPaid), dateCell(s), strDeref(s.Email),
			student.FormatDate(s.RegistrationDate), validTill(s), strDeref(s.QRURL),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func paidLabel(paid bool) string {
	if paid {
		return "Paid"
	}
	return "Unpaid"
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intDeref(i *int) any {
	if i == nil {
		return ""
	}
	return *i
}

func dateCell(s student.Student) string {
	if s.TransactionDate == nil {
		return ""
	}
	return student.FormatDate(*s.TransactionDate)
}

func validTill(s student.Student) string {
	if s.ValidTill == nil {
		return ""
	}
	return student.FormatDate(*s.ValidTill)
}
