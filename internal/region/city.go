package region

import "strings"

var cityToState = map[string]ID{
	"Mumbai":    Maharashtra,
	"Delhi":     Delhi,
	"Bangalore": Karnataka,
	"Hyderabad": Telangana,
	"Chennai":   TamilNadu,
	"Kolkata":   WestBengal,
	"Pune":      Maharashtra,
	"Ahmedabad": Gujarat,
	"Jaipur":    Rajasthan,
	"Lucknow":   UttarPradesh,
	"Patna":     Bihar,
}

// StateForCity：城市名 → 所属行政区
// 约束：未知城市返回 false 而非错误，聚合层据此剔除该记录；仅去除首尾空白，不做大小写归一
func StateForCity(city string) (ID, bool) {
	id, ok := cityToState[strings.TrimSpace(city)]
	return id, ok
}
