package domain

// StationRecord is one physical station from the station master.
type StationRecord struct {
	Code        string   `json:"code" validate:"required,alphanum,len=3"`
	StationType string   `json:"station_type,omitempty"`
	City        string   `json:"city,omitempty"`
	Address01   string   `json:"address_01,omitempty"`
	Address02   string   `json:"address_02,omitempty"`
	ZIPCode     string   `json:"zip_code,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	State       string   `json:"state,omitempty"`
	Country     string   `json:"country,omitempty"`
	Region      string   `json:"region,omitempty"`
	Division    string   `json:"division,omitempty"`
}

// StationOverride is a manual correction for a station whose source geodata
// is wrong or missing. Every non-nil field replaces the joined value.
type StationOverride struct {
	Code      string   `yaml:"code" json:"code" validate:"required"`
	City      *string  `yaml:"city,omitempty" json:"city,omitempty"`
	Address01 *string  `yaml:"address_01,omitempty" json:"address_01,omitempty"`
	Address02 *string  `yaml:"address_02,omitempty" json:"address_02,omitempty"`
	ZIPCode   *string  `yaml:"zip_code,omitempty" json:"zip_code,omitempty"`
	Latitude  *float64 `yaml:"latitude,omitempty" json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `yaml:"longitude,omitempty" json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Reason    string   `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// OverrideSet is a versioned collection of station overrides.
type OverrideSet struct {
	Version   string            `yaml:"version" json:"version" validate:"required"`
	Overrides []StationOverride `yaml:"overrides" json:"overrides" validate:"dive"`
}

// RegionDivision locates a state or province in the census geography.
type RegionDivision struct {
	Region   string `json:"region"`
	Division string `json:"division"`
}
