// 包 region：邦/中央直辖区枚举、城市归属表与代表坐标表
// 背景：记录数据按城市名归属到邦，边界数据按 NAME_1 属性命名；两侧通过同一组 ID 对齐，避免裸字符串比较
package region

// ID：行政区标识（ISO 3166-2:IN 后缀）
type ID string

const (
	AndhraPradesh    ID = "AP"
	ArunachalPradesh ID = "AR"
	Assam            ID = "AS"
	Bihar            ID = "BR"
	Chhattisgarh     ID = "CT"
	Goa              ID = "GA"
	Gujarat          ID = "GJ"
	Haryana          ID = "HR"
	HimachalPradesh  ID = "HP"
	Jharkhand        ID = "JH"
	Karnataka        ID = "KA"
	Kerala           ID = "KL"
	MadhyaPradesh    ID = "MP"
	Maharashtra      ID = "MH"
	Manipur          ID = "MN"
	Meghalaya        ID = "ML"
	Mizoram          ID = "MZ"
	Nagaland         ID = "NL"
	Odisha           ID = "OR"
	Punjab           ID = "PB"
	Rajasthan        ID = "RJ"
	Sikkim           ID = "SK"
	TamilNadu        ID = "TN"
	Telangana        ID = "TG"
	Tripura          ID = "TR"
	UttarPradesh     ID = "UP"
	Uttarakhand      ID = "UT"
	WestBengal       ID = "WB"

	AndamanNicobar ID = "AN"
	Chandigarh     ID = "CH"
	DadraNagar     ID = "DN"
	DamanDiu       ID = "DD"
	Delhi          ID = "DL"
	JammuKashmir   ID = "JK"
	Ladakh         ID = "LA"
	Lakshadweep    ID = "LD"
	Puducherry     ID = "PY"
)

// 名称与边界数据 NAME_1 保持逐字一致
var names = map[ID]string{
	AndhraPradesh:    "Andhra Pradesh",
	ArunachalPradesh: "Arunachal Pradesh",
	Assam:            "Assam",
	Bihar:            "Bihar",
	Chhattisgarh:     "Chhattisgarh",
	Goa:              "Goa",
	Gujarat:          "Gujarat",
	Haryana:          "Haryana",
	HimachalPradesh:  "Himachal Pradesh",
	Jharkhand:        "Jharkhand",
	Karnataka:        "Karnataka",
	Kerala:           "Kerala",
	MadhyaPradesh:    "Madhya Pradesh",
	Maharashtra:      "Maharashtra",
	Manipur:          "Manipur",
	Meghalaya:        "Meghalaya",
	Mizoram:          "Mizoram",
	Nagaland:         "Nagaland",
	Odisha:           "Odisha",
	Punjab:           "Punjab",
	Rajasthan:        "Rajasthan",
	Sikkim:           "Sikkim",
	TamilNadu:        "Tamil Nadu",
	Telangana:        "Telangana",
	Tripura:          "Tripura",
	UttarPradesh:     "Uttar Pradesh",
	Uttarakhand:      "Uttarakhand",
	WestBengal:       "West Bengal",
	AndamanNicobar:   "Andaman and Nicobar",
	Chandigarh:       "Chandigarh",
	DadraNagar:       "Dadra and Nagar Haveli",
	DamanDiu:         "Daman and Diu",
	Delhi:            "Delhi",
	JammuKashmir:     "Jammu and Kashmir",
	Ladakh:           "Ladakh",
	Lakshadweep:      "Lakshadweep",
	Puducherry:       "Puducherry",
}

var byName = func() map[string]ID {
	m := make(map[string]ID, len(names))
	for id, n := range names {
		m[n] = id
	}
	return m
}()

// Name：返回行政区显示名；未知 ID 返回 ID 本身
func (id ID) Name() string {
	if n, ok := names[id]; ok {
		return n
	}
	return string(id)
}

// Valid：是否为已枚举的行政区
func (id ID) Valid() bool {
	_, ok := names[id]
	return ok
}

// Lookup：按名称精确匹配行政区（区分大小写，不做别名或模糊匹配）
func Lookup(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// All：全部已枚举行政区 ID
func All() []ID {
	out := make([]ID, 0, len(names))
	for id := range names {
		out = append(out, id)
	}
	return out
}
