package config

// Scope is the geographic region RootSignal continuously observes: a
// center point, a radius, and the search terms used to seed discovery
// queries against web_query sources.
type Scope struct {
	Name        string   `yaml:"name" validate:"required"`
	CenterLat   float64  `yaml:"center_lat" validate:"required,latitude"`
	CenterLng   float64  `yaml:"center_lng" validate:"required,longitude"`
	RadiusKM    float64  `yaml:"radius_km" validate:"required,gt=0"`
	SearchTerms []string `yaml:"search_terms" validate:"omitempty,dive,required"`
}

// SourceSeed is a Source the operator seeds at startup, before any
// source_registered events exist in the log (source_registered is still
// the event of record; this is just the bootstrap list).
type SourceSeed struct {
	URL        string  `yaml:"url" validate:"required,url"`
	SourceType string  `yaml:"source_type" validate:"required,oneof=web_query web_page rss social html_listing"`
	Weight     float64 `yaml:"weight" validate:"gte=0,lte=1"`
}

// BlockedSource is a URL or domain pattern the Link Promoter (C8) must
// never propose as a new source.
type BlockedSource struct {
	Pattern string `yaml:"pattern" validate:"required"`
}
