package model

// ================ Catalog types ================

// Product is the flat product document returned by the catalog's
// products endpoints. Only the fields requested through the show
// parameter are populated; everything else stays at its zero value.
type Product struct {
	SKU                   int64              `json:"sku,omitempty"`
	Name                  string             `json:"name,omitempty"`
	RegularPrice          float64            `json:"regularPrice,omitempty"`
	SalePrice             float64            `json:"salePrice,omitempty"`
	OnSale                bool               `json:"onSale,omitempty"`
	DollarSavings         float64            `json:"dollarSavings,omitempty"`
	PercentSavings        string             `json:"percentSavings,omitempty"`
	Image                 string             `json:"image,omitempty"`
	LargeFrontImage       string             `json:"largeFrontImage,omitempty"`
	MediumImage           string             `json:"mediumImage,omitempty"`
	ThumbnailImage        string             `json:"thumbnailImage,omitempty"`
	ShortDescription      string             `json:"shortDescription,omitempty"`
	LongDescription       string             `json:"longDescription,omitempty"`
	Manufacturer          string             `json:"manufacturer,omitempty"`
	ModelNumber           string             `json:"modelNumber,omitempty"`
	UPC                   string             `json:"upc,omitempty"`
	URL                   string             `json:"url,omitempty"`
	AddToCartURL          string             `json:"addToCartUrl,omitempty"`
	MobileURL             string             `json:"mobileUrl,omitempty"`
	CustomerReviewAverage float64            `json:"customerReviewAverage,omitempty"`
	CustomerReviewCount   int                `json:"customerReviewCount,omitempty"`
	CustomerTopRated      bool               `json:"customerTopRated,omitempty"`
	FreeShipping          bool               `json:"freeShipping,omitempty"`
	InStoreAvailability   bool               `json:"inStoreAvailability,omitempty"`
	OnlineAvailability    bool               `json:"onlineAvailability,omitempty"`
	Condition             string             `json:"condition,omitempty"`
	Preowned              bool               `json:"preowned,omitempty"`
	Depth                 string             `json:"depth,omitempty"`
	Height                string             `json:"height,omitempty"`
	Width                 string             `json:"width,omitempty"`
	Weight                string             `json:"weight,omitempty"`
	Color                 string             `json:"color,omitempty"`
	WarrantyLabor         string             `json:"warrantyLabor,omitempty"`
	WarrantyParts         string             `json:"warrantyParts,omitempty"`
	Details               []ProductDetail    `json:"details,omitempty"`
	IncludedItems         []IncludedItem     `json:"includedItemList,omitempty"`
	Offers                []ProductOffer     `json:"offers,omitempty"`
	Accessories           []ProductRef       `json:"accessories,omitempty"`
	ProductVariations     []ProductRef       `json:"productVariations,omitempty"`
	CategoryPath          []CategoryPathItem `json:"categoryPath,omitempty"`
}

type ProductDetail struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

type IncludedItem struct {
	Item string `json:"includedItem,omitempty"`
}

type ProductOffer struct {
	ID      string `json:"id,omitempty"`
	Heading string `json:"heading,omitempty"`
	Text    string `json:"text,omitempty"`
}

type ProductRef struct {
	SKU int64 `json:"sku,omitempty"`
}

type CategoryPathItem struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// SearchResult is a page of products plus the pagination header the
// catalog sends alongside it.
type SearchResult struct {
	From        int       `json:"from"`
	To          int       `json:"to"`
	Total       int       `json:"total"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	Products    []Product `json:"products"`
}

// ================ Stores ================

type Store struct {
	StoreID    int64   `json:"storeId,omitempty"`
	StoreType  string  `json:"storeType,omitempty"`
	Name       string  `json:"name,omitempty"`
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city,omitempty"`
	Region     string  `json:"region,omitempty"`
	PostalCode string  `json:"postalCode,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Distance   float64 `json:"distance,omitempty"`
}

type StoreAvailability struct {
	Store                 Store `json:"store"`
	InStock               bool  `json:"in_stock"`
	PickupEligible        bool  `json:"pickup_eligible"`
	ShipFromStoreEligible bool  `json:"ship_from_store_eligible"`
}

type StoreSearchResult struct {
	SKU         string              `json:"sku"`
	ProductName string              `json:"product_name,omitempty"`
	PostalCode  string              `json:"postal_code"`
	Stores      []StoreAvailability `json:"stores"`
	TotalStores int                 `json:"total_stores"`
}

// ================ Categories ================

type Category struct {
	ID            string             `json:"id,omitempty"`
	Name          string             `json:"name,omitempty"`
	URL           string             `json:"url,omitempty"`
	Path          []CategoryPathItem `json:"path,omitempty"`
	SubCategories []CategoryPathItem `json:"subCategories,omitempty"`
}

type CategoryResult struct {
	Total      int        `json:"total"`
	Categories []Category `json:"categories"`
}

// ================ Open box ================

type OpenBoxOffer struct {
	Condition     string  `json:"condition,omitempty"`
	OpenBoxPrice  float64 `json:"open_box_price,omitempty"`
	RegularPrice  float64 `json:"regular_price,omitempty"`
	AddToCartURL  string  `json:"add_to_cart_url,omitempty"`
	ProductURL    string  `json:"product_url,omitempty"`
}

type OpenBoxResult struct {
	SKU         string         `json:"sku"`
	ProductName string         `json:"product_name,omitempty"`
	HasOpenBox  bool           `json:"has_open_box"`
	NewPrice    float64        `json:"new_price,omitempty"`
	Offers      []OpenBoxOffer `json:"offers,omitempty"`
}

// ================ User behavior context ================

// UserContext summarizes recent shopper behavior and steers both the
// system prompt personalization and the proactive prefetcher.
type UserContext struct {
	RecentCategories      []string `json:"recent_categories,omitempty"`
	RecentSKUs            []string `json:"recent_skus,omitempty"`
	FavoriteManufacturers []string `json:"favorite_manufacturers,omitempty"`
	InteractionCount      int      `json:"interaction_count,omitempty"`
}
