package geo

// City is one row of the immutable city lookup table.
type City struct {
	Name        string // canonical English name
	Continent   string
	Country     string
	Code        string // three-letter IATA-like identifier
	ForeignName string // name in the city's local language
	CityState   bool   // single-city country, flattens the asset path
}

// cities is the curated city table. Codes follow the IATA metropolitan
// area code where one exists.
var cities = []City{
	{Name: "Seoul", Continent: "Asia", Country: "South Korea", Code: "SEL", ForeignName: "서울"},
	{Name: "Busan", Continent: "Asia", Country: "South Korea", Code: "PUS", ForeignName: "부산"},
	{Name: "Jeju", Continent: "Asia", Country: "South Korea", Code: "CJU", ForeignName: "제주"},
	{Name: "Tokyo", Continent: "Asia", Country: "Japan", Code: "TYO", ForeignName: "東京"},
	{Name: "Osaka", Continent: "Asia", Country: "Japan", Code: "OSA", ForeignName: "大阪"},
	{Name: "Kyoto", Continent: "Asia", Country: "Japan", Code: "UKY", ForeignName: "京都"},
	{Name: "Fukuoka", Continent: "Asia", Country: "Japan", Code: "FUK", ForeignName: "福岡"},
	{Name: "Sapporo", Continent: "Asia", Country: "Japan", Code: "SPK", ForeignName: "札幌"},
	{Name: "Taipei", Continent: "Asia", Country: "Taiwan", Code: "TPE", ForeignName: "台北"},
	{Name: "Bangkok", Continent: "Asia", Country: "Thailand", Code: "BKK", ForeignName: "กรุงเทพมหานคร"},
	{Name: "Chiang Mai", Continent: "Asia", Country: "Thailand", Code: "CNX", ForeignName: "เชียงใหม่"},
	{Name: "Phuket", Continent: "Asia", Country: "Thailand", Code: "HKT", ForeignName: "ภูเก็ต"},
	{Name: "Da Nang", Continent: "Asia", Country: "Vietnam", Code: "DAD", ForeignName: "Đà Nẵng"},
	{Name: "Hanoi", Continent: "Asia", Country: "Vietnam", Code: "HAN", ForeignName: "Hà Nội"},
	{Name: "Ho Chi Minh City", Continent: "Asia", Country: "Vietnam", Code: "SGN", ForeignName: "Thành phố Hồ Chí Minh"},
	{Name: "Singapore", Continent: "Asia", Country: "Singapore", Code: "SIN", ForeignName: "Singapore", CityState: true},
	{Name: "Hong Kong", Continent: "Asia", Country: "Hong Kong", Code: "HKG", ForeignName: "香港", CityState: true},
	{Name: "Macau", Continent: "Asia", Country: "Macau", Code: "MFM", ForeignName: "澳門", CityState: true},
	{Name: "Kuala Lumpur", Continent: "Asia", Country: "Malaysia", Code: "KUL", ForeignName: "Kuala Lumpur"},
	{Name: "Kota Kinabalu", Continent: "Asia", Country: "Malaysia", Code: "BKI", ForeignName: "Kota Kinabalu"},
	{Name: "Bali", Continent: "Asia", Country: "Indonesia", Code: "DPS", ForeignName: "Bali"},
	{Name: "Cebu", Continent: "Asia", Country: "Philippines", Code: "CEB", ForeignName: "Cebu"},
	{Name: "Guam", Continent: "Oceania", Country: "Guam", Code: "GUM", ForeignName: "Guam", CityState: true},
	{Name: "Saipan", Continent: "Oceania", Country: "Northern Mariana Islands", Code: "SPN", ForeignName: "Saipan", CityState: true},
	{Name: "Sydney", Continent: "Oceania", Country: "Australia", Code: "SYD", ForeignName: "Sydney"},
	{Name: "Paris", Continent: "Europe", Country: "France", Code: "PAR", ForeignName: "Paris"},
	{Name: "London", Continent: "Europe", Country: "United Kingdom", Code: "LON", ForeignName: "London"},
	{Name: "Rome", Continent: "Europe", Country: "Italy", Code: "ROM", ForeignName: "Roma"},
	{Name: "Barcelona", Continent: "Europe", Country: "Spain", Code: "BCN", ForeignName: "Barcelona"},
	{Name: "Prague", Continent: "Europe", Country: "Czechia", Code: "PRG", ForeignName: "Praha"},
	{Name: "New York", Continent: "North America", Country: "United States", Code: "NYC", ForeignName: "New York"},
	{Name: "Los Angeles", Continent: "North America", Country: "United States", Code: "LAX", ForeignName: "Los Angeles"},
	{Name: "Honolulu", Continent: "North America", Country: "United States", Code: "HNL", ForeignName: "Honolulu"},
}

// aliases maps lowercase synonyms (romanisations, translations, airport
// codes) to the canonical city name. Canonical names themselves are added
// at registry construction.
var aliases = map[string]string{
	"서울":            "Seoul",
	"seoul":         "Seoul",
	"icn":           "Seoul",
	"부산":            "Busan",
	"pusan":         "Busan",
	"제주":            "Jeju",
	"jeju island":   "Jeju",
	"jejudo":        "Jeju",
	"도쿄":            "Tokyo",
	"東京":            "Tokyo",
	"tokio":         "Tokyo",
	"nrt":           "Tokyo",
	"hnd":           "Tokyo",
	"오사카":           "Osaka",
	"大阪":            "Osaka",
	"kix":           "Osaka",
	"교토":            "Kyoto",
	"京都":            "Kyoto",
	"후쿠오카":          "Fukuoka",
	"福岡":            "Fukuoka",
	"삿포로":           "Sapporo",
	"札幌":            "Sapporo",
	"타이베이":          "Taipei",
	"타이페이":          "Taipei",
	"台北":            "Taipei",
	"방콕":            "Bangkok",
	"krung thep":    "Bangkok",
	"치앙마이":          "Chiang Mai",
	"chiangmai":     "Chiang Mai",
	"푸켓":            "Phuket",
	"다낭":            "Da Nang",
	"danang":        "Da Nang",
	"하노이":           "Hanoi",
	"호치민":           "Ho Chi Minh City",
	"ho chi minh":   "Ho Chi Minh City",
	"saigon":        "Ho Chi Minh City",
	"싱가포르":          "Singapore",
	"싱가폴":           "Singapore",
	"홍콩":            "Hong Kong",
	"hongkong":      "Hong Kong",
	"香港":            "Hong Kong",
	"마카오":           "Macau",
	"macao":         "Macau",
	"쿠알라룸푸르":        "Kuala Lumpur",
	"kl":            "Kuala Lumpur",
	"코타키나발루":        "Kota Kinabalu",
	"발리":            "Bali",
	"denpasar":      "Bali",
	"세부":            "Cebu",
	"괌":             "Guam",
	"사이판":           "Saipan",
	"시드니":           "Sydney",
	"파리":            "Paris",
	"런던":            "London",
	"로마":            "Rome",
	"roma":          "Rome",
	"바르셀로나":         "Barcelona",
	"프라하":           "Prague",
	"praha":         "Prague",
	"뉴욕":            "New York",
	"new york city": "New York",
	"nyc":           "New York",
	"로스앤젤레스":        "Los Angeles",
	"la":            "Los Angeles",
	"호놀룰루":          "Honolulu",
	"hawaii":        "Honolulu",
	"하와이":           "Honolulu",
}
