package domain

// School is a geocoded secondary school with its success-rate metric, used
// as a nearest-neighbor reference set. TauxMention is the weighted success
// rate for lycées and the top-honor ratio for collèges.
type School struct {
	UAI         string
	Name        string
	CodeCommune string
	TauxMention float64
	Latitude    float64
	Longitude   float64
}
