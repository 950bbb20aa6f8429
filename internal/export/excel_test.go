package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gocampus/internal/student"
)

func TestStudentsWorkbook(t *testing.T) {
	amount := 15000
	txn := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	contact := "+919876543210"

	data, err := StudentsWorkbook([]student.Student{
		{
			StudentID:        "S01",
			Name:             "Aarav Mehta",
			BusID:            "1",
			FeePaid:          true,
			AmountPaid:       &amount,
			TransactionDate:  &txn,
			ParentContact:    &contact,
			RegistrationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			StudentID:        "S02",
			Name:             "Diya Patel",
			BusID:            "2",
			RegistrationDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Student ID", rows[0][0])
	assert.Equal(t, "S01", rows[1][0])
	assert.Equal(t, "Paid", rows[1][3])
	assert.Equal(t, "10-02-2024", rows[1][8])
	assert.Equal(t, "S02", rows[2][0])
	assert.Equal(t, "Unpaid", rows[2][3])
}

func TestStudentsWorkbookEmpty(t *testing.T) {
	data, err := StudentsWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
