package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateBusID(t *testing.T) {
	assert.NoError(t, ValidateBusID("12"))
	assert.NoError(t, ValidateBusID("7"))
	assert.ErrorIs(t, ValidateBusID(""), ErrValidation)
	assert.ErrorIs(t, ValidateBusID("BUS1"), ErrValidation)
	assert.ErrorIs(t, ValidateBusID("12a"), ErrValidation)
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone(""))
	assert.NoError(t, ValidatePhone("9876543210"))
	assert.NoError(t, ValidatePhone("+91 98765 43210"))
	assert.ErrorIs(t, ValidatePhone("12345"), ErrValidation)
	assert.ErrorIs(t, ValidatePhone("1111111111"), ErrValidation)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizePhone("+91 98765-43210"))
	assert.Equal(t, "9876543210", NormalizePhone("009876543210"))
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestFormatPhoneDisplay(t *testing.T) {
	assert.Equal(t, "+91 98765 43210", FormatPhoneDisplay("+919876543210"))
	assert.Equal(t, "12345", FormatPhoneDisplay("12345"))
}

func TestFormatStudentID(t *testing.T) {
	assert.Equal(t, "S01", FormatStudentID(1))
	assert.Equal(t, "S12", FormatStudentID(12))
	assert.Equal(t, "S104", FormatStudentID(104))
}

func TestParseStudentID(t *testing.T) {
	n, ok := ParseStudentID("S01")
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	n, ok = ParseStudentID("s104")
	assert.True(t, ok)
	assert.Equal(t, 104, n)

	_, ok = ParseStudentID("X01")
	assert.False(t, ok)
	_, ok = ParseStudentID("S")
	assert.False(t, ok)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "900", FormatAmount(900))
	assert.Equal(t, "15,000", FormatAmount(15000))
	assert.Equal(t, "1,500,000", FormatAmount(1500000))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "09-03-2024", FormatDate(d))
}

func TestEffectiveValidTill(t *testing.T) {
	reg := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	till := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	withTill := Student{RegistrationDate: reg, ValidTill: &till}
	assert.Equal(t, till, withTill.EffectiveValidTill(365))

	withoutTill := Student{RegistrationDate: reg}
	assert.Equal(t, reg.AddDate(0, 0, 365), withoutTill.EffectiveValidTill(365))
}

func TestRenewalAlerts(t *testing.T) {
	svc := NewService(nil, 15000, 365, 30)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	soon := now.AddDate(0, 0, 10)
	far := now.AddDate(0, 0, 200)
	past := now.AddDate(0, 0, -3)

	students := []Student{
		{StudentID: "S01", Name: "Aarav Mehta", RegistrationDate: now, ValidTill: &soon},
		{StudentID: "S02", Name: "Diya Patel", RegistrationDate: now, ValidTill: &far},
		{StudentID: "S03", Name: "Rohan Iyer", RegistrationDate: now, ValidTill: &past},
	}

	alerts := svc.RenewalAlerts(students, now)
	assert.Len(t, alerts, 2)
	assert.Equal(t, "S01", alerts[0].StudentID)
	assert.False(t, alerts[0].IsExpired)
	assert.Equal(t, "S03", alerts[1].StudentID)
	assert.True(t, alerts[1].IsExpired)
}
