package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"usage-map/internal/usage"
)

func TestDistribute(t *testing.T) {
	records := []usage.UsageRecord{
		{Age: "31", Gender: "Male", PhoneBrand: "Samsung"},
		{Age: "25", Gender: "Female", PhoneBrand: "Apple"},
		{Age: "31", Gender: "Female", PhoneBrand: "Xiaomi"},
		{Age: "unknown", Gender: "Other", PhoneBrand: "Apple"},
		{Age: "8", Gender: "", PhoneBrand: "Vivo"},
		{Age: "", Gender: "Female", PhoneBrand: "Oppo"},
		{PhoneBrand: "Realme"},
		{PhoneBrand: "Samsung"},
	}
	d := Distribute(records, 3)

	assert.Equal(t, []Count{{"8", 1}, {"25", 1}, {"31", 2}, {"unknown", 1}}, d.Age)
	assert.Equal(t, []Count{{"Female", 3}, {"Male", 1}, {"Other", 1}}, d.Gender)
	assert.Equal(t, []Count{{"Samsung", 2}, {"Apple", 2}, {"Xiaomi", 1}}, d.Brands)

	all := Distribute(records, 0)
	assert.Len(t, all.Brands, 6)
}

func TestOverall(t *testing.T) {
	o := Overall([]usage.UsageRecord{
		{UserID: "a", ScreenTime: usage.Num(2)},
		{UserID: "a", ScreenTime: usage.Num(4)},
		{UserID: "b", ScreenTime: usage.Missing},
		{UserID: ""},
	})
	assert.Equal(t, 4, o.Records)
	assert.Equal(t, 2, o.Users)
	assert.Equal(t, usage.Num(3), o.MeanScreenTime)

	assert.False(t, Overall(nil).MeanScreenTime.Valid)
}
