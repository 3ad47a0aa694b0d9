// Package cards holds the card domain: the GraphQL operations, the list and
// find queries, and a Service that runs mutations with the right cache policy.
package cards

import (
	"github.com/five82/cardwatch/internal/cache"
	"github.com/five82/cardwatch/internal/query"
	"github.com/five82/cardwatch/internal/remote"
)

// Card is a single record of the cards list. ID is assigned by the server.
type Card struct {
	ID       string `json:"id"`
	CaseName string `json:"caseName"`
	Name     string `json:"name"`
	Sex      string `json:"sex"`
}

// NewCard is the input of the addCard mutation.
type NewCard struct {
	CaseName string `json:"caseName"`
	Name     string `json:"name"`
	Sex      string `json:"sex"`
}

// DemoCard is the card the "add" action creates.
var DemoCard = NewCard{CaseName: "HT-18TEST", Name: "test", Sex: "male"}

var (
	ListOperation = remote.Operation{
		Name: "CardsListQuery",
		Document: `query CardsListQuery {
  cards {
    id
    caseName
    name
    sex
  }
}`,
	}

	FindOperation = remote.Operation{
		Name: "CardQuery",
		Document: `query CardQuery($name: String!) {
  card(name: $name) {
    id
    caseName
    name
    sex
  }
}`,
	}

	AddOperation = remote.Operation{
		Name: "addCard",
		Document: `mutation addCard($i: CreateCardInput!) {
  addCard(i: $i) {
    id
    caseName
    name
    sex
  }
}`,
	}

	DeleteOperation = remote.Operation{
		Name: "deleteCard",
		Document: `mutation deleteCard($id: String!) {
  deleteCard(id: $id) {
    id
    caseName
  }
}`,
	}
)

// ListSignature is the cache slot of the cards list.
var ListSignature = cache.NewSignature(ListOperation.Name, nil)

// ListQuery describes the cards list subscription.
func ListQuery() query.Query[Card] {
	return query.Query[Card]{
		Operation: ListOperation,
		Decode:    decodeList,
	}
}

// FindQuery looks a card up by name. The result is cached under its own
// signature and is either empty or a single card.
func FindQuery(name string) query.Query[Card] {
	return query.Query[Card]{
		Operation: FindOperation,
		Variables: remote.Variables{"name": name},
		Decode:    decodeFind,
	}
}

func decodeList(p remote.Payload) ([]Card, error) {
	var out []Card
	if err := p.Decode("cards", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeFind(p remote.Payload) ([]Card, error) {
	var card *Card
	if err := p.Decode("card", &card); err != nil {
		return nil, err
	}
	if card == nil {
		return []Card{}, nil
	}
	return []Card{*card}, nil
}

// RemoveByID drops every card with the given id, keeping the relative order
// of the rest.
func RemoveByID(id string) cache.UpdateFunc[Card] {
	return func(current []Card) []Card {
		out := make([]Card, 0, len(current))
		for _, c := range current {
			if c.ID != id {
				out = append(out, c)
			}
		}
		return out
	}
}

// RemoveFirst drops the first card regardless of which one the server
// deleted. Prefer RemoveByID.
func RemoveFirst(current []Card) []Card {
	if len(current) == 0 {
		return current
	}
	out := make([]Card, len(current)-1)
	copy(out, current[1:])
	return out
}
