package catalog

// Record é um POI do catálogo. Os nomes JSON seguem o Fix_Franchise.json publicado.
// Latitude e longitude vêm como texto decimal e são repassadas como estão.
type Record struct {
	FranchiseName string `json:"Franchise_name"`
	FranchiseCode string `json:"Franchise_code"`
	StoreName     string `json:"Store_name"`
	StoreCode     string `json:"Store_code"`
	Address       string `json:"Store_addr"`
	Phone         string `json:"Store_tel"`
	Latitude      string `json:"Store_lat"`
	Longitude     string `json:"Store_long"`
	FeatureSet    string `json:"FS_name"`
	Region        string `json:"region,omitempty"`
	Status        string `json:"status,omitempty"`
}
