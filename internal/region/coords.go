package region

// Point：WGS84 经纬度
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DefaultCenter：全国中心点，缺少代表坐标的行政区标记落在此处
var DefaultCenter = Point{Lat: 20.5937, Lon: 78.9629}

var anchors = map[ID]Point{
	AndhraPradesh:    {15.9129, 79.7400},
	ArunachalPradesh: {28.2180, 94.7278},
	Assam:            {26.2006, 92.9376},
	Bihar:            {25.0968, 85.3131},
	Chhattisgarh:     {21.2787, 81.8661},
	Goa:              {15.2993, 74.1240},
	Gujarat:          {22.2587, 71.1924},
	Haryana:          {29.0588, 76.0856},
	HimachalPradesh:  {32.0657, 77.1167},
	Jharkhand:        {23.6102, 85.2799},
	Karnataka:        {15.3173, 75.7139},
	Kerala:           {10.8505, 76.2711},
	MadhyaPradesh:    {22.9734, 78.6569},
	Maharashtra:      {19.7515, 75.7139},
	Manipur:          {24.6637, 93.9063},
	Meghalaya:        {25.4670, 91.3662},
	Mizoram:          {23.1645, 92.9376},
	Nagaland:         {26.1584, 94.5624},
	Odisha:           {20.9517, 85.0985},
	Punjab:           {31.1471, 75.3412},
	Rajasthan:        {27.0238, 74.2176},
	Sikkim:           {27.5330, 88.5122},
	TamilNadu:        {13.0827, 80.2707},
	Telangana:        {17.1232, 78.6569},
	Tripura:          {23.9408, 91.9882},
	UttarPradesh:     {26.8468, 80.9462},
	Uttarakhand:      {30.0668, 79.0193},
	WestBengal:       {22.9876, 87.8550},
}

// Anchor：行政区代表坐标；第二返回值为 false 时给出的是全国中心点
func (id ID) Anchor() (Point, bool) {
	if p, ok := anchors[id]; ok {
		return p, true
	}
	return DefaultCenter, false
}

// Coordinates：按名称查询代表坐标，名称不在坐标表中时回退到全国中心点，从不报错
func Coordinates(name string) Point {
	id, ok := Lookup(name)
	if !ok {
		return DefaultCenter
	}
	p, _ := id.Anchor()
	return p
}
