package models

// Depot is an entry of the depot catalog.
type Depot struct {
	ID      string  `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Address string  `db:"address" json:"address"`
	Lat     float64 `db:"lat" json:"lat"`
	Lng     float64 `db:"lng" json:"lng"`
}

// FeeMatrixEntry is the flat relocation fee for an ordered depot pair.
// DistanceKm is nullable in DB.
type FeeMatrixEntry struct {
	OriginDepotID      string   `db:"origin_depot_id" json:"origin_depot_id"`
	DestinationDepotID string   `db:"destination_depot_id" json:"destination_depot_id"`
	Fee                int64    `db:"fee" json:"fee"`
	DistanceKm         *float64 `db:"distance_km" json:"distance_km,omitempty"`
}
