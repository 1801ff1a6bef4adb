package creature

// Chart maps attacking element -> defending element -> damage multiplier.
type Chart map[Element]map[Element]float64

func DefaultChart() Chart {
	return Chart{
		Fire:     {Grass: 1.5, Water: 0.5, Rock: 0.75},
		Water:    {Fire: 1.5, Rock: 1.25, Electric: 0.5},
		Grass:    {Water: 1.5, Fire: 0.5, Rock: 1.25},
		Electric: {Water: 1.5, Rock: 0.75, Grass: 1.0},
		Rock:     {Fire: 1.25, Electric: 1.25},
	}
}

// Multiplier looks up att vs def. Unlisted pairs, including same-element
// and Neutral matchups, are 1.0; so are non-positive entries.
func (c Chart) Multiplier(att, def Element) float64 {
	if v, ok := c[att][def]; ok && v > 0 {
		return v
	}
	return 1.0
}
