package board

import "sort"

// Card is anything that sits in a status column.
type Card interface {
	CardStatus() Status
	CardPosition() int
}

type Column[T Card] struct {
	Status Status `json:"status"`
	Cards  []T    `json:"cards"`
}

// Group buckets cards into the five columns in board order. Every column is
// present, possibly empty, and cards are sorted by position.
func Group[T Card](cards []T) []Column[T] {
	idx := make(map[Status]int, len(columns))
	out := make([]Column[T], len(columns))
	for i, s := range columns {
		idx[s] = i
		out[i] = Column[T]{Status: s, Cards: []T{}}
	}

	for _, c := range cards {
		i, ok := idx[c.CardStatus()]
		if !ok {
			continue
		}
		out[i].Cards = append(out[i].Cards, c)
	}

	for i := range out {
		cards := out[i].Cards
		sort.SliceStable(cards, func(a, b int) bool {
			return cards[a].CardPosition() < cards[b].CardPosition()
		})
	}
	return out
}
