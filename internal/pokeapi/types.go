package pokeapi

// NamedResource is PokeAPI's generic {name, url} reference
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PokemonSummary is one entry of the paginated pokemon listing. URL points
// at the full detail record.
type PokemonSummary struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// pageResponse is the envelope of every paginated PokeAPI listing
type pageResponse struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []PokemonSummary `json:"results"`
}

// TypeSlot associates a pokemon with one of its types
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// PokemonDetail is the full detail record for one pokemon. Pointer fields
// are optional in the remote payload; ID and Name are required and the
// client rejects payloads missing them.
type PokemonDetail struct {
	ID                     int        `json:"id"`
	Name                   string     `json:"name"`
	BaseExperience         *int       `json:"base_experience"`
	Height                 *int       `json:"height"`
	Order                  *int       `json:"order"`
	Weight                 *int       `json:"weight"`
	LocationAreaEncounters string     `json:"location_area_encounters"`
	Types                  []TypeSlot `json:"types"`
}

// encounter is one entry of a location_area_encounters resource
type encounter struct {
	LocationArea NamedResource `json:"location_area"`
}
