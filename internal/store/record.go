package store

// RecordStatus labels how complete one persisted product row is.
type RecordStatus string

const (
	RecordComplete RecordStatus = "complete"
	RecordPartial  RecordStatus = "partial"
)

// ProductRecord is one row of the per-source product table. Field order
// is the on-disk column order and must not be reordered.
type ProductRecord struct {
	Number            int          `csv:"number"`
	CityID            string       `csv:"city_id"`
	Page              int          `csv:"page"`
	Continent         string       `csv:"continent"`
	Country           string       `csv:"country"`
	City              string       `csv:"city"`
	CityCode          string       `csv:"city_code"`
	ProductType       string       `csv:"product_type"`
	Title             string       `csv:"title"`
	PriceRaw          string       `csv:"price_raw"`
	PriceClean        string       `csv:"price_clean"`
	RatingRaw         string       `csv:"rating_raw"`
	RatingClean       string       `csv:"rating_clean"`
	ReviewCount       int          `csv:"review_count"`
	Language          string       `csv:"language"`
	Category          string       `csv:"category"`
	Highlight         string       `csv:"highlight"`
	Location          string       `csv:"location"`
	MainImageFilename string       `csv:"main_image_filename"`
	MainImageRelPath  string       `csv:"main_image_relpath"`
	MainImageAbsPath  string       `csv:"main_image_abspath"`
	MainImageStatus   string       `csv:"main_image_status"`
	ThumbFilename     string       `csv:"thumb_filename"`
	ThumbRelPath      string       `csv:"thumb_relpath"`
	ThumbAbsPath      string       `csv:"thumb_abspath"`
	ThumbStatus       string       `csv:"thumb_status"`
	URL               string       `csv:"url"`
	CollectedAt       string       `csv:"collected_at"`
	Status            RecordStatus `csv:"status"`
	TabName           string       `csv:"tab_name"`
	TabOrder          int          `csv:"tab_order"`
	TabRank           int          `csv:"tab_rank"`
	URLHash           string       `csv:"url_hash"`
}
